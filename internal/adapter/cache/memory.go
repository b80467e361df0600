package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"exchange-rate-resolver/pkg/logger"
)

type memoryEntry struct {
	value    []byte
	storedAt time.Time
}

// MemoryCache is an in-process CacheStore. Entries older than the TTL read as misses
// until ClearExpired drops them. A zero TTL keeps entries forever.
type MemoryCache struct {
	cacheMap map[string]memoryEntry
	mutex    sync.RWMutex
	cacheTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
}

func NewMemoryCache(cacheTTL time.Duration, log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		cacheMap: make(map[string]memoryEntry),
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

func (c *MemoryCache) expired(e memoryEntry, now time.Time) bool {
	return c.cacheTTL > 0 && now.Sub(e.storedAt) > c.cacheTTL
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, found := c.cacheMap[key]
	if !found {
		return nil, false, nil
	}
	if c.expired(e, c.now()) {
		c.log.Debug("Cache entry expired", "key", key)
		return nil, false, nil
	}

	return bytes.Clone(e.value), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cacheMap[key] = memoryEntry{value: bytes.Clone(value), storedAt: c.now()}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.cacheMap, key)
	return nil
}

func (c *MemoryCache) ClearExpired(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	expiredKeys := make([]string, 0)

	for key, e := range c.cacheMap {
		if c.expired(e, now) {
			expiredKeys = append(expiredKeys, key)
		}
	}

	for _, key := range expiredKeys {
		delete(c.cacheMap, key)
		c.log.Debug("Removed expired cache entry", "key", key)
	}

	c.log.Info("Cleared expired cache entries", "count", len(expiredKeys))
	return nil
}
