package kv

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/repository"
	"github.com/lalith-99/roomcast/internal/store"
	"go.uber.org/zap"
)

const (
	// DefaultRoomID is the canonical public room created on first boot.
	DefaultRoomID   = "general"
	defaultRoomName = "General"
)

// RoomStore owns the room directory and membership. Join/Leave are
// read-modify-write on the whole room record; concurrent edits on the same
// room are last-writer-wins, which the store contract accepts (no
// compare-and-swap primitive is exposed).
type RoomStore struct {
	store    store.Store
	messages repository.MessageRepository
	logger   *zap.Logger
	now      func() time.Time
}

var _ repository.RoomRepository = (*RoomStore)(nil)

func NewRoomStore(s store.Store, messages repository.MessageRepository, logger *zap.Logger) *RoomStore {
	return &RoomStore{
		store:    s,
		messages: messages,
		logger:   logger,
		now:      time.Now,
	}
}

// Slugify derives a URL-safe room id from a display name: lowercased, runs of
// non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *RoomStore) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	if room.ID == "" {
		room.ID = Slugify(room.Name)
	}
	if room.ID == "" {
		return nil, repository.NewValidationError("room has no usable id or name")
	}

	var existing models.Room
	found, err := s.store.HashGet(ctx, roomsKey, room.ID, &existing)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, repository.ErrDuplicate
	}

	room.CreatedAt = s.now().UnixMilli()
	if room.Members == nil {
		room.Members = []string{}
	}
	if err := s.store.HashSet(ctx, roomsKey, room.ID, room); err != nil {
		return nil, err
	}
	s.notify(ctx, NotifyRoomUpdate, room)
	return room, nil
}

func (s *RoomStore) Get(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	found, err := s.store.HashGet(ctx, roomsKey, roomID, &room)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &room, nil
}

func (s *RoomStore) ListAll(ctx context.Context) ([]models.Room, error) {
	entries, err := s.store.HashGetAll(ctx, roomsKey)
	if err != nil {
		return nil, err
	}

	rooms := make([]models.Room, 0, len(entries))
	for id, raw := range entries {
		var r models.Room
		if err := json.Unmarshal(raw, &r); err != nil {
			s.logger.Warn("skipping undecodable room", zap.String("id", id), zap.Error(err))
			continue
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}

func (s *RoomStore) Join(ctx context.Context, roomID, userID string) error {
	room, err := s.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room.HasMember(userID) {
		return nil
	}

	room.Members = append(room.Members, userID)
	if err := s.store.HashSet(ctx, roomsKey, room.ID, room); err != nil {
		return err
	}
	s.notify(ctx, NotifyRoomUpdate, room)
	s.announce(ctx, roomID, userID, "has joined the room")
	return nil
}

func (s *RoomStore) Leave(ctx context.Context, roomID, userID string) error {
	room, err := s.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasMember(userID) {
		return nil
	}

	members := make([]string, 0, len(room.Members)-1)
	for _, id := range room.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	room.Members = members
	if err := s.store.HashSet(ctx, roomsKey, room.ID, room); err != nil {
		return err
	}
	s.notify(ctx, NotifyRoomUpdate, room)
	s.announce(ctx, roomID, userID, "has left the room")
	return nil
}

func (s *RoomStore) Delete(ctx context.Context, roomID string) error {
	if _, err := s.Get(ctx, roomID); err != nil {
		return err
	}
	if err := s.store.HashDelete(ctx, roomsKey, roomID); err != nil {
		return err
	}
	// Cascade: the room's message sequence goes with it.
	if err := s.store.Delete(ctx, messagesKey(roomID)); err != nil {
		return err
	}
	s.notify(ctx, NotifyRoomRemove, roomID)
	return nil
}

func (s *RoomStore) EnsureDefaultRoom(ctx context.Context) (*models.Room, error) {
	rooms, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rooms) > 0 {
		if room, err := s.Get(ctx, DefaultRoomID); err == nil {
			return room, nil
		}
		// Directory is non-empty but the canonical id is gone; the first
		// room stands in as the fallback target.
		return &rooms[0], nil
	}

	room := &models.Room{
		ID:          DefaultRoomID,
		Name:        defaultRoomName,
		Description: "The default room",
	}
	return s.Create(ctx, room)
}

// announce emits a room-scoped system message for a membership change. The
// display name comes from the presence directory; when it can't be resolved
// the announcement is skipped but the membership change stands.
func (s *RoomStore) announce(ctx context.Context, roomID, userID, what string) {
	name := s.displayName(ctx, userID)
	if name == "" {
		return
	}
	msg := &models.Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Content:   name + " " + what,
		Sender:    "system",
		SenderID:  "system",
		Timestamp: s.now().UnixMilli(),
		Kind:      models.KindSystem,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		s.logger.Warn("append system message", zap.String("room", roomID), zap.Error(err))
	}
}

func (s *RoomStore) displayName(ctx context.Context, userID string) string {
	var u models.User
	found, err := s.store.HashGet(ctx, usersKey, userID, &u)
	if err != nil || !found {
		return ""
	}
	return u.Name
}

func (s *RoomStore) notify(ctx context.Context, typ string, data any) {
	if err := s.store.Publish(ctx, GlobalChannel, Notification{Type: typ, Data: data}); err != nil {
		s.logger.Warn("publish room event", zap.String("type", typ), zap.Error(err))
	}
}
