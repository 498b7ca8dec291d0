package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is an in-process Cache used when no Redis address is configured.
// Expired entries are dropped lazily on read.
type MemoryCache struct {
	entries sync.Map
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

// Get returns the cached value for key when present and not expired.
func (memoryCache *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	entryValue, present := memoryCache.entries.Load(key)
	if !present {
		return "", false, nil
	}
	entry := entryValue.(memoryEntry)
	if memoryCache.now().After(entry.expires) {
		memoryCache.entries.Delete(key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key for the given TTL.
func (memoryCache *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	memoryCache.entries.Store(key, memoryEntry{
		value:   value,
		expires: memoryCache.now().Add(ttl),
	})
	return nil
}
