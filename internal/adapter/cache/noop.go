package cache

import (
	"context"
	"time"
)

// NoopCache never stores anything, so every lookup is a miss.
type NoopCache struct{}

func NewNoopCache() NoopCache {
	return NoopCache{}
}

func (NoopCache) Get(ctx context.Context, key string) ([]byte, bool) {
	return nil, false
}

func (NoopCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return nil
}
