package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore implements Store on a single Redis connection pool. go-redis
// manages pooling internally, so one client is shared by every repository.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects using a Redis URL ("redis://host:6379/0") and
// verifies the connection with a ping before handing the store out. A store
// that can't answer a ping at startup is a configuration problem, not
// something to discover on the first poll.
func NewRedisStore(ctx context.Context, redisURL string, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established", zap.String("addr", opts.Addr))
	return &RedisStore{client: client, logger: logger}, nil
}

func (s *RedisStore) ListAppend(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal list entry: %w", err)
	}
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) ListRange(ctx context.Context, key string) ([][]byte, error) {
	vals, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	entries := make([][]byte, 0, len(vals))
	for _, v := range vals {
		entries = append(entries, []byte(v))
	}
	return entries, nil
}

func (s *RedisStore) ListRemove(ctx context.Context, key string, raw []byte) error {
	if err := s.client.LRem(ctx, key, 1, raw).Err(); err != nil {
		return fmt.Errorf("lrem %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) HashSet(ctx context.Context, key, field string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal hash value: %w", err)
	}
	if err := s.client.HSet(ctx, key, field, data).Err(); err != nil {
		return fmt.Errorf("hset %s/%s: %w", key, field, err)
	}
	return nil
}

func (s *RedisStore) HashGet(ctx context.Context, key, field string, dest any) (bool, error) {
	data, err := s.client.HGet(ctx, key, field).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("hget %s/%s: %w", key, field, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal hash value: %w", err)
	}
	return true, nil
}

func (s *RedisStore) HashGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	entries := make(map[string][]byte, len(vals))
	for field, v := range vals {
		entries[field] = []byte(v)
	}
	return entries, nil
}

func (s *RedisStore) HashDelete(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, key, fields...).Err(); err != nil {
		return fmt.Errorf("hdel %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

func (s *RedisStore) Publish(ctx context.Context, channel string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := s.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context, channels ...string) (<-chan Event, func(), error) {
	sub := s.client.Subscribe(ctx, channels...)
	// Receive the subscription confirmation so events can't be missed
	// between Subscribe returning and the first channel read.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			select {
			case events <- Event{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		if err := sub.Close(); err != nil {
			s.logger.Warn("close subscription", zap.Error(err))
		}
	}
	return events, cancel, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	s.logger.Info("closing redis connection")
	return s.client.Close()
}
