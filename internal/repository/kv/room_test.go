package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/repository"
	"github.com/lalith-99/roomcast/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type roomFixture struct {
	rooms    *RoomStore
	messages *MessageStore
	users    *PresenceStore
	mem      *store.MemoryStore
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()
	mem := store.NewMemoryStore()
	logger := zap.NewNop()
	messages := NewMessageStore(mem, time.Hour, logger)
	users := NewPresenceStore(mem, 2*time.Minute, 5*time.Minute, logger)
	return &roomFixture{
		rooms:    NewRoomStore(mem, messages, logger),
		messages: messages,
		users:    users,
		mem:      mem,
	}
}

func TestSlugify(t *testing.T) {
	tcases := []struct {
		in   string
		want string
	}{
		{"General", "general"},
		{"Dev Talk", "dev-talk"},
		{"  spaced  out  ", "spaced-out"},
		{"C++ & Go!", "c-go"},
		{"room-42", "room-42"},
	}
	for _, tc := range tcases {
		assert.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestRoomStoreCreateAndGet(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	created, err := f.rooms.Create(ctx, &models.Room{
		ID:          "x",
		Name:        "X",
		Description: "test room",
		CreatedBy:   "u1",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.CreatedAt)

	got, err := f.rooms.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "X", got.Name)
	assert.Equal(t, "test room", got.Description)
	assert.Equal(t, "u1", got.CreatedBy)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Empty(t, got.Members)
}

func TestRoomStoreCreateDerivesID(t *testing.T) {
	f := newRoomFixture(t)

	created, err := f.rooms.Create(context.Background(), &models.Room{Name: "Dev Talk"})
	require.NoError(t, err)
	assert.Equal(t, "dev-talk", created.ID)
}

func TestRoomStoreCreateDuplicate(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	_, err := f.rooms.Create(ctx, &models.Room{ID: "general", Name: "General", CreatedBy: "u1"})
	require.NoError(t, err)

	_, err = f.rooms.Create(ctx, &models.Room{ID: "general", Name: "Hijack", CreatedBy: "u2"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// The existing room is untouched.
	got, err := f.rooms.Get(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, "General", got.Name)
	assert.Equal(t, "u1", got.CreatedBy)
}

func TestRoomStoreGetNotFound(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.rooms.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRoomStoreJoin(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	_, err := f.rooms.Create(ctx, &models.Room{ID: "general", Name: "General"})
	require.NoError(t, err)
	require.NoError(t, f.users.Upsert(ctx, &models.User{ID: "u1", Name: "Alice"}))

	require.NoError(t, f.rooms.Join(ctx, "general", "u1"))

	room, err := f.rooms.Get(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, room.Members)

	msgs, err := f.messages.ListSince(ctx, "general", -1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.KindSystem, msgs[0].Kind)
	assert.Equal(t, "Alice has joined the room", msgs[0].Content)
}

func TestRoomStoreJoinIdempotent(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	_, err := f.rooms.Create(ctx, &models.Room{ID: "general", Name: "General"})
	require.NoError(t, err)
	require.NoError(t, f.users.Upsert(ctx, &models.User{ID: "u1", Name: "Alice"}))

	require.NoError(t, f.rooms.Join(ctx, "general", "u1"))
	require.NoError(t, f.rooms.Join(ctx, "general", "u1"))

	room, err := f.rooms.Get(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, room.Members, "second join must not duplicate membership")

	msgs, err := f.messages.ListSince(ctx, "general", -1)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "second join must not announce again")
}

func TestRoomStoreJoinUnknownRoom(t *testing.T) {
	f := newRoomFixture(t)

	err := f.rooms.Join(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRoomStoreJoinUnknownUserSkipsAnnouncement(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	_, err := f.rooms.Create(ctx, &models.Room{ID: "general", Name: "General"})
	require.NoError(t, err)

	// No presence record for u9: membership is still recorded, the system
	// message is skipped.
	require.NoError(t, f.rooms.Join(ctx, "general", "u9"))

	room, err := f.rooms.Get(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, []string{"u9"}, room.Members)

	msgs, err := f.messages.ListSince(ctx, "general", -1)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRoomStoreLeave(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	_, err := f.rooms.Create(ctx, &models.Room{ID: "general", Name: "General"})
	require.NoError(t, err)
	require.NoError(t, f.users.Upsert(ctx, &models.User{ID: "u1", Name: "Alice"}))
	require.NoError(t, f.rooms.Join(ctx, "general", "u1"))

	require.NoError(t, f.rooms.Leave(ctx, "general", "u1"))

	room, err := f.rooms.Get(ctx, "general")
	require.NoError(t, err)
	assert.Empty(t, room.Members)

	msgs, err := f.messages.ListSince(ctx, "general", -1)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Alice has left the room", msgs[1].Content)

	// Leaving again is a no-op with no extra announcement.
	require.NoError(t, f.rooms.Leave(ctx, "general", "u1"))
	msgs, err = f.messages.ListSince(ctx, "general", -1)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestRoomStoreDeleteCascades(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	_, err := f.rooms.Create(ctx, &models.Room{ID: "general", Name: "General"})
	require.NoError(t, err)
	require.NoError(t, f.messages.Append(ctx, testMessage("general", "hi", 1)))

	require.NoError(t, f.rooms.Delete(ctx, "general"))

	_, err = f.rooms.Get(ctx, "general")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	msgs, err := f.messages.ListSince(ctx, "general", -1)
	require.NoError(t, err)
	assert.Empty(t, msgs, "room deletion must remove its message sequence")
}

func TestRoomStoreDeleteUnknown(t *testing.T) {
	f := newRoomFixture(t)

	err := f.rooms.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestRoomStoreEnsureDefaultRoom(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	room, err := f.rooms.EnsureDefaultRoom(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultRoomID, room.ID)
	assert.False(t, room.Private)

	// Second call finds the existing room instead of recreating it.
	again, err := f.rooms.EnsureDefaultRoom(ctx)
	require.NoError(t, err)
	assert.Equal(t, room.CreatedAt, again.CreatedAt)

	rooms, err := f.rooms.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}
