package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/dvsite/interactome/internal/core/model"
)

const redisKeyPrefix = "interactome:network:"

// RedisStore keeps networks as JSON blobs keyed by fingerprint. A plain SET
// replaces the value atomically, which is exactly the overwrite contract the
// cache requires. No TTL is set; see the package comment.
type RedisStore struct {
	client *redis.Client
}

var _ NetworkStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Lookup(ctx context.Context, key model.NetworkRequestKey) (*model.NetworkResult, bool, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+key.Fingerprint()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis lookup failed: %w", err)
	}

	var result model.NetworkResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached network: %w", err)
	}
	return &result, true, nil
}

func (s *RedisStore) Store(ctx context.Context, result *model.NetworkResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+result.Key.Fingerprint(), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis store failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, key model.NetworkRequestKey) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key.Fingerprint()).Err(); err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}
