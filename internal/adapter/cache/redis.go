package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fixer-service/pkg/logger"
)

// RedisCache stores payloads in Redis and lets Redis expire them.
type RedisCache struct {
	client *redis.Client
	prefix string
	log    *logger.Logger
}

func NewRedisCache(client *redis.Client, prefix string, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, log: log}
}

func NewRedisCacheWithOptions(opt *redis.Options, prefix string, log *logger.Logger) *RedisCache {
	return NewRedisCache(redis.NewClient(opt), prefix, log)
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

// Get treats backend errors as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.log.Debug("Redis cache miss", "key", key)
		return nil, false
	}
	if err != nil {
		r.log.Error("Redis cache get error", "key", key, "error", err)
		return nil, false
	}
	r.log.Debug("Redis cache hit", "key", key)
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(key), payload, ttl).Err(); err != nil {
		r.log.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.log.Debug("Redis cache set", "key", key, "ttl", ttl)
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
