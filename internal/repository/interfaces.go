package repository

import (
	"context"

	"github.com/lalith-99/roomcast/internal/models"
)

// Every method takes a context because every method is a store round trip:
// if the HTTP request is cancelled, the store call is cancelled with it.
// Concrete implementations live in repository/kv, built on the store.Store
// contract; handlers only ever see these interfaces.

// MessageRepository owns each room's append-only message sequence.
type MessageRepository interface {
	// Append validates the message, appends it to its room's sequence, and
	// publishes a new-message notification on the room's update channel.
	// Returns a ValidationError when the room id is missing.
	Append(ctx context.Context, msg *models.Message) error

	// ListSince returns the room's retained messages with timestamp strictly
	// greater than since, in append order. Use since = -1 (or any value
	// before the retention window) for the full retained window.
	ListSince(ctx context.Context, roomID string, since int64) ([]models.Message, error)

	// PurgeExpired removes messages older than the retention window and
	// returns how many were removed. Individual deletion failures are logged
	// and skipped; a partial sweep is acceptable.
	PurgeExpired(ctx context.Context, roomID string) (int, error)
}

// UserRepository is the presence directory.
type UserRepository interface {
	// Upsert writes the presence record and publishes a user-update
	// notification. Idempotent.
	Upsert(ctx context.Context, user *models.User) error

	// Remove deletes the directory entry and publishes user-remove. A no-op
	// when the user is absent.
	Remove(ctx context.Context, userID string) error

	// List returns the raw directory, online or not.
	List(ctx context.Context) ([]models.User, error)

	// ListOnline returns users seen within the online threshold. Derived
	// view only; nothing in the store changes.
	ListOnline(ctx context.Context) ([]models.User, error)

	// SweepInactive evicts users not seen within the inactivity limit and
	// returns how many were evicted.
	SweepInactive(ctx context.Context) (int, error)
}

// RoomRepository owns the room directory and membership lifecycle.
type RoomRepository interface {
	// Create stores a new room with an empty member set. Returns
	// ErrDuplicate when the id is already taken, leaving the existing room
	// untouched.
	Create(ctx context.Context, room *models.Room) (*models.Room, error)

	// Get returns ErrNotFound for an unknown id. An existing room with no
	// members is a successful lookup, not an error.
	Get(ctx context.Context, roomID string) (*models.Room, error)

	ListAll(ctx context.Context) ([]models.Room, error)

	// Join adds the user to the member set and emits a "has joined" system
	// message into the room. A second Join by the same user is a no-op with
	// no duplicate announcement. Returns ErrNotFound for an unknown room.
	Join(ctx context.Context, roomID, userID string) error

	// Leave mirrors Join: removes membership, emits "has left", no-op when
	// the user was not a member.
	Leave(ctx context.Context, roomID, userID string) error

	// Delete removes the room and its entire message sequence. Creator-only
	// authorization is enforced at the endpoint, not here.
	Delete(ctx context.Context, roomID string) error

	// EnsureDefaultRoom creates the canonical public room when the directory
	// is empty, and returns the default room either way.
	EnsureDefaultRoom(ctx context.Context) (*models.Room, error)
}

// AccountRepository binds network addresses to stable identities.
type AccountRepository interface {
	// Register is an idempotent login for a known address: the existing
	// account comes back with a refreshed LastLogin. For a new address it
	// validates the username (3-20 chars, ValidationError otherwise; the
	// name must be free case-insensitively, ErrDuplicate otherwise) and
	// creates the account plus the reverse address mapping.
	Register(ctx context.Context, username, address string) (*models.Account, error)

	// Lookup returns the account bound to the address or ErrNotFound. Never
	// creates.
	Lookup(ctx context.Context, address string) (*models.Account, error)
}
