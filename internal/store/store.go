// Package store wraps the hosted key-value capability the chat is built on:
// ordered list append/range/remove for message sequences, hashes for the
// user/room/account directories, and publish/subscribe for change
// notifications. All JSON encoding happens at this boundary — repositories
// hand in Go values and get raw JSON entries back, so exactly one
// serialization contract exists in the whole system.
package store

import "context"

// Event is one published notification, as delivered to a subscriber.
type Event struct {
	Channel string
	Payload []byte
}

// Store is the key-value contract the repositories depend on. The production
// implementation is RedisStore; MemoryStore backs tests.
type Store interface {
	// ListAppend marshals v and appends it to the ordered list at key.
	ListAppend(ctx context.Context, key string, v any) error

	// ListRange returns every entry of the list at key, in append order.
	// A missing key yields an empty slice, not an error.
	ListRange(ctx context.Context, key string) ([][]byte, error)

	// ListRemove deletes the first list entry exactly equal to raw.
	ListRemove(ctx context.Context, key string, raw []byte) error

	// HashSet marshals v and stores it under field in the hash at key.
	HashSet(ctx context.Context, key, field string, v any) error

	// HashGet unmarshals the value at field into dest. The boolean reports
	// whether the field existed; a missing field is not an error.
	HashGet(ctx context.Context, key, field string, dest any) (bool, error)

	// HashGetAll returns every field of the hash at key with its raw JSON
	// value. A missing key yields an empty map.
	HashGetAll(ctx context.Context, key string) (map[string][]byte, error)

	// HashDelete removes the given fields. Missing fields are a no-op.
	HashDelete(ctx context.Context, key string, fields ...string) error

	// Delete removes whole keys. Missing keys are a no-op.
	Delete(ctx context.Context, keys ...string) error

	// Publish marshals v and fans it out to subscribers of channel.
	Publish(ctx context.Context, channel string, v any) error

	// Subscribe delivers events published to any of the given channels until
	// the returned cancel func is called or ctx is done.
	Subscribe(ctx context.Context, channels ...string) (<-chan Event, func(), error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
