package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store used by tests. It mirrors the Redis
// semantics the repositories rely on: append-ordered lists, field-keyed
// hashes, and best-effort pub/sub fan-out to active subscribers.
type MemoryStore struct {
	mu     sync.Mutex
	lists  map[string][][]byte
	hashes map[string]map[string][]byte
	subs   map[int]*memSub
	nextID int
	closed bool

	// FailKeys makes operations on the listed keys fail, for exercising
	// degraded-read paths. Nil means nothing fails.
	FailKeys map[string]error
}

type memSub struct {
	channels map[string]bool
	events   chan Event
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lists:  make(map[string][][]byte),
		hashes: make(map[string]map[string][]byte),
		subs:   make(map[int]*memSub),
	}
}

func (s *MemoryStore) failure(key string) error {
	if s.FailKeys == nil {
		return nil
	}
	return s.FailKeys[key]
}

func (s *MemoryStore) ListAppend(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(key); err != nil {
		return err
	}
	s.lists[key] = append(s.lists[key], data)
	return nil
}

func (s *MemoryStore) ListRange(ctx context.Context, key string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(key); err != nil {
		return nil, err
	}
	entries := make([][]byte, len(s.lists[key]))
	copy(entries, s.lists[key])
	return entries, nil
}

func (s *MemoryStore) ListRemove(ctx context.Context, key string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(key); err != nil {
		return err
	}
	list := s.lists[key]
	for i, entry := range list {
		if bytes.Equal(entry, raw) {
			s.lists[key] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) HashSet(ctx context.Context, key, field string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(key); err != nil {
		return err
	}
	if s.hashes[key] == nil {
		s.hashes[key] = make(map[string][]byte)
	}
	s.hashes[key][field] = data
	return nil
}

func (s *MemoryStore) HashGet(ctx context.Context, key, field string, dest any) (bool, error) {
	s.mu.Lock()
	if err := s.failure(key); err != nil {
		s.mu.Unlock()
		return false, err
	}
	data, ok := s.hashes[key][field]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (s *MemoryStore) HashGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(key); err != nil {
		return nil, err
	}
	entries := make(map[string][]byte, len(s.hashes[key]))
	for field, v := range s.hashes[key] {
		entries[field] = v
	}
	return entries, nil
}

func (s *MemoryStore) HashDelete(ctx context.Context, key string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(key); err != nil {
		return err
	}
	for _, field := range fields {
		delete(s.hashes[key], field)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if err := s.failure(key); err != nil {
			return err
		}
		delete(s.lists, key)
		delete(s.hashes, key)
	}
	return nil
}

func (s *MemoryStore) Publish(ctx context.Context, channel string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if !sub.channels[channel] {
			continue
		}
		// Non-blocking: a subscriber that stopped draining must not wedge
		// publishers, matching Redis fire-and-forget pub/sub.
		select {
		case sub.events <- Event{Channel: channel, Payload: data}:
		default:
		}
	}
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, channels ...string) (<-chan Event, func(), error) {
	sub := &memSub{
		channels: make(map[string]bool, len(channels)),
		events:   make(chan Event, 16),
	}
	for _, ch := range channels {
		sub.channels[ch] = true
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(sub.events)
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()

	return sub.events, cancel, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("ping"); err != nil {
		return err
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SubscriberCount reports how many subscribers are currently registered;
// handy for asserting stream teardown in tests.
func (s *MemoryStore) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
