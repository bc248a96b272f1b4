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

// MessageStore keeps each room's messages in an append-ordered list. Appends
// are race-free by construction; only PurgeExpired removes entries.
type MessageStore struct {
	store     store.Store
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

var _ repository.MessageRepository = (*MessageStore)(nil)

func NewMessageStore(s store.Store, retention time.Duration, logger *zap.Logger) *MessageStore {
	return &MessageStore{
		store:     s,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *MessageStore) Append(ctx context.Context, msg *models.Message) error {
	if msg.RoomID == "" {
		return repository.NewValidationError("message has no room id")
	}

	if err := s.store.ListAppend(ctx, messagesKey(msg.RoomID), msg); err != nil {
		return err
	}

	// Notification fan-out is best effort: the message is already durable,
	// and pollers will pick it up on the next cycle regardless.
	notif := Notification{Type: NotifyNewMessage, Data: msg}
	if err := s.store.Publish(ctx, RoomChannel(msg.RoomID), notif); err != nil {
		s.logger.Warn("publish new-message", zap.String("room", msg.RoomID), zap.Error(err))
	}
	return nil
}

func (s *MessageStore) ListSince(ctx context.Context, roomID string, since int64) ([]models.Message, error) {
	entries, err := s.store.ListRange(ctx, messagesKey(roomID))
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(entries))
	for _, raw := range entries {
		var msg models.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			// A corrupt entry shouldn't take the whole room down.
			s.logger.Warn("skipping undecodable message", zap.String("room", roomID), zap.Error(err))
			continue
		}
		if msg.Timestamp > since {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func (s *MessageStore) PurgeExpired(ctx context.Context, roomID string) (int, error) {
	key := messagesKey(roomID)
	entries, err := s.store.ListRange(ctx, key)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.retention).UnixMilli()
	removed := 0
	for _, raw := range entries {
		var msg models.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("skipping undecodable message", zap.String("room", roomID), zap.Error(err))
			continue
		}
		if msg.Timestamp >= cutoff {
			continue
		}
		if err := s.store.ListRemove(ctx, key, raw); err != nil {
			// Partial sweeps are fine; the entry stays eligible next round.
			s.logger.Warn("purge message", zap.String("room", roomID), zap.String("id", msg.ID), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
