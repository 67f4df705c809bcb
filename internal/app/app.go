package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fixer-service/internal/adapter/cache"
	"fixer-service/internal/adapter/transport"
	"fixer-service/internal/config"
	"fixer-service/internal/domain/ports"
	"fixer-service/internal/metrics"
	"fixer-service/internal/service"
	"fixer-service/pkg/logger"
)

// App holds the wired components shared by the server and the CLI.
type App struct {
	Dispatcher *service.Dispatcher
	Cache      ports.PayloadCache

	closers []func() error
}

// New wires the dispatcher from configuration. m may be nil.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*App, error) {
	a := &App{}

	payloadCache, err := a.newCache(ctx, cfg.Cache, log)
	if err != nil {
		return nil, err
	}
	a.Cache = payloadCache

	dispatcher, err := service.NewDispatcher(service.Config{
		AccessKey:           cfg.Fixer.AccessKey,
		Tier:                cfg.Fixer.Tier,
		Symbols:             cfg.Fixer.Symbols,
		BaseURL:             cfg.Fixer.BaseURL,
		TTL:                 cfg.Cache.TTL,
		Transport:           transport.NewHTTPTransport(cfg.Fixer.Timeout, log),
		Cache:               payloadCache,
		Classifier:          service.NewErrorClassifier(cfg.Fixer.SoftErrorCodes...),
		DeduplicateInFlight: cfg.Fixer.DeduplicateInFlight,
		Metrics:             m,
		Log:                 log,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Dispatcher = dispatcher

	log.Info("Dispatcher configured",
		"tier", cfg.Fixer.Tier.String(),
		"cache", string(cfg.Cache.Backend),
		"ttl", cfg.Cache.TTL,
		"symbols", len(cfg.Fixer.Symbols),
		"deduplicate", cfg.Fixer.DeduplicateInFlight,
	)

	return a, nil
}

func (a *App) newCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (ports.PayloadCache, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNoopCache(), nil
	case config.CacheRedis:
		rc := cache.NewRedisCacheWithOptions(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix, log)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, rc.Close)
		return rc, nil
	default:
		return cache.NewMemoryCache(log), nil
	}
}

// SweepExpired periodically drops expired entries from an in-memory cache
// until ctx is done. Other backends expire on their own.
func (a *App) SweepExpired(ctx context.Context, interval time.Duration, log *logger.Logger) {
	mc, ok := a.Cache.(*cache.MemoryCache)
	if !ok || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := mc.ClearExpired(ctx); err != nil {
				log.Error("Failed to clear expired cache entries", "error", err)
			}
		case <-ctx.Done():
			log.Info("Stopping cache sweep goroutine")
			return
		}
	}
}

func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
