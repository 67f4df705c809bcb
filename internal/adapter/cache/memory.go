package cache

import (
	"context"
	"sync"
	"time"

	"fixer-service/pkg/logger"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache keeps payloads in process memory until their TTL passes.
type MemoryCache struct {
	cacheMap map[string]memoryEntry
	mutex    sync.RWMutex
	now      func() time.Time
	log      *logger.Logger
}

func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		cacheMap: make(map[string]memoryEntry),
		now:      time.Now,
		log:      log,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, found := c.cacheMap[key]
	if !found {
		c.log.Debug("Cache miss", "key", key)
		return nil, false
	}

	if !c.now().Before(entry.expiresAt) {
		c.log.Debug("Cache entry expired", "key", key)
		return nil, false
	}

	c.log.Debug("Cache hit", "key", key)
	return entry.payload, true
}

// Set stores a copy of payload. A non-positive ttl stores nothing.
func (c *MemoryCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cacheMap[key] = memoryEntry{
		payload:   append([]byte(nil), payload...),
		expiresAt: c.now().Add(ttl),
	}
	c.log.Debug("Cache set", "key", key, "ttl", ttl)

	return nil
}

func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cacheMap)
}

func (c *MemoryCache) ClearExpired(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	expiredKeys := make([]string, 0)

	for key, entry := range c.cacheMap {
		if !now.Before(entry.expiresAt) {
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
