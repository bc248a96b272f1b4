package kv

import (
	"context"
	"testing"
	"time"

	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPresenceStore(t *testing.T) *PresenceStore {
	t.Helper()
	return NewPresenceStore(store.NewMemoryStore(), 2*time.Minute, 5*time.Minute, zap.NewNop())
}

func TestPresenceStoreUpsertDefaultsLastSeen(t *testing.T) {
	s := newPresenceStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }

	user := &models.User{ID: "u1", Name: "Alice"}
	require.NoError(t, s.Upsert(ctx, user))
	assert.Equal(t, base.UnixMilli(), user.LastSeen)

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)
}

func TestPresenceStoreOnlineIsDerived(t *testing.T) {
	s := newPresenceStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }

	// Seen 3 minutes ago: offline by the 2-minute threshold, but still in
	// the directory until the sweeper's 5-minute limit.
	stale := &models.User{ID: "u1", Name: "Alice", LastSeen: base.Add(-3 * time.Minute).UnixMilli()}
	fresh := &models.User{ID: "u2", Name: "Bob", LastSeen: base.UnixMilli()}
	require.NoError(t, s.Upsert(ctx, stale))
	require.NoError(t, s.Upsert(ctx, fresh))

	online, err := s.ListOnline(ctx)
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, "u2", online[0].ID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPresenceStoreSweepInactive(t *testing.T) {
	s := newPresenceStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }

	gone := &models.User{ID: "u1", Name: "Alice", LastSeen: base.Add(-6 * time.Minute).UnixMilli()}
	offline := &models.User{ID: "u2", Name: "Bob", LastSeen: base.Add(-3 * time.Minute).UnixMilli()}
	require.NoError(t, s.Upsert(ctx, gone))
	require.NoError(t, s.Upsert(ctx, offline))

	removed, err := s.SweepInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "u2", all[0].ID)
}

func TestPresenceStoreRemoveIdempotent(t *testing.T) {
	s := newPresenceStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, &models.User{ID: "u1", Name: "Alice"}))
	require.NoError(t, s.Remove(ctx, "u1"))
	require.NoError(t, s.Remove(ctx, "u1"), "removing an absent user must not error")

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
