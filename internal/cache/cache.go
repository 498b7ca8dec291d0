// Package cache provides the small key/value cache used to memoize responses
// from the proxied third-party APIs.
package cache

import (
	"context"
	"time"
)

// Cache stores string values under string keys with a per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
