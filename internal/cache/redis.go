package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const errorMessageRedisCacheSet = "cache: redis set"

// RedisCache keeps proxy responses in Redis so horizontally scaled instances
// share one upstream budget.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache builds a Redis-backed cache for the given address.
func NewRedisCache(address string, password string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
		}),
	}
}

// Get returns the cached value for key when present.
func (redisCache *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, getErr := redisCache.client.Get(ctx, key).Result()
	if errors.Is(getErr, redis.Nil) {
		return "", false, nil
	}
	if getErr != nil {
		return "", false, fmt.Errorf("cache: redis get: %w", getErr)
	}
	return value, true, nil
}

// Set stores value under key for the given TTL.
func (redisCache *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if setErr := redisCache.client.Set(ctx, key, value, ttl).Err(); setErr != nil {
		return fmt.Errorf("%s: %w", errorMessageRedisCacheSet, setErr)
	}
	return nil
}
