package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"philliesbot/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "philliesbot:pending:"

// RedisStore is a PendingStore shared across bot instances
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(key Key) string {
	return keyPrefix + key.String()
}

// Put stores req with SET EX
func (s *RedisStore) Put(ctx context.Context, key Key, req PendingRequest, ttl time.Duration) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling pending request: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(key), data, ttl).Err(); err != nil {
		metrics.RecordError("cache", "redis_set")
		return fmt.Errorf("failed to store pending request: %w", err)
	}
	metrics.RecordPending("stored")
	return nil
}

// Take reads and deletes the request in one GETDEL
func (s *RedisStore) Take(ctx context.Context, key Key) (*PendingRequest, error) {
	data, err := s.client.GetDel(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordError("cache", "redis_getdel")
		return nil, fmt.Errorf("failed to take pending request: %w", err)
	}

	var req PendingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("unmarshaling pending request: %w", err)
	}
	metrics.RecordPending("taken")
	return &req, nil
}
