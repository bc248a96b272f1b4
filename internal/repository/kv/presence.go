package kv

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/repository"
	"github.com/lalith-99/roomcast/internal/store"
	"go.uber.org/zap"
)

// PresenceStore is the user directory. Online/offline is derived from
// LastSeen against onlineAfter; eviction uses the independent maxAge limit.
// The two thresholds are deliberately separate knobs.
type PresenceStore struct {
	store       store.Store
	onlineAfter time.Duration
	maxAge      time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

var _ repository.UserRepository = (*PresenceStore)(nil)

func NewPresenceStore(s store.Store, onlineAfter, maxAge time.Duration, logger *zap.Logger) *PresenceStore {
	return &PresenceStore{
		store:       s,
		onlineAfter: onlineAfter,
		maxAge:      maxAge,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *PresenceStore) Upsert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return repository.NewValidationError("user has no id")
	}
	if user.LastSeen == 0 {
		user.LastSeen = s.now().UnixMilli()
	}
	if err := s.store.HashSet(ctx, usersKey, user.ID, user); err != nil {
		return err
	}
	s.notify(ctx, NotifyUserUpdate, user)
	return nil
}

func (s *PresenceStore) Remove(ctx context.Context, userID string) error {
	if err := s.store.HashDelete(ctx, usersKey, userID); err != nil {
		return err
	}
	s.notify(ctx, NotifyUserRemove, userID)
	return nil
}

func (s *PresenceStore) List(ctx context.Context) ([]models.User, error) {
	entries, err := s.store.HashGetAll(ctx, usersKey)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(entries))
	for id, raw := range entries {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			s.logger.Warn("skipping undecodable user", zap.String("id", id), zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *PresenceStore) ListOnline(ctx context.Context) ([]models.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-s.onlineAfter).UnixMilli()
	online := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.LastSeen >= cutoff {
			online = append(online, u)
		}
	}
	return online, nil
}

func (s *PresenceStore) SweepInactive(ctx context.Context) (int, error) {
	users, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.maxAge).UnixMilli()
	removed := 0
	for _, u := range users {
		if u.LastSeen >= cutoff {
			continue
		}
		if err := s.Remove(ctx, u.ID); err != nil {
			s.logger.Warn("evict inactive user", zap.String("id", u.ID), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *PresenceStore) notify(ctx context.Context, typ string, data any) {
	if err := s.store.Publish(ctx, GlobalChannel, Notification{Type: typ, Data: data}); err != nil {
		s.logger.Warn("publish presence event", zap.String("type", typ), zap.Error(err))
	}
}
