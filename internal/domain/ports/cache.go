package ports

import (
	"context"
	"time"
)

// PayloadCache stores raw provider payloads under opaque keys.
// Expiry is the implementation's job.
type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
