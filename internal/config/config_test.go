package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixer-service/internal/domain/model"
	"fixer-service/internal/service"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, service.DefaultBaseURL, cfg.Fixer.BaseURL)
	assert.Equal(t, model.Free, cfg.Fixer.Tier)
	assert.Nil(t, cfg.Fixer.Symbols)
	assert.Equal(t, service.DefaultSoftErrorCodes, cfg.Fixer.SoftErrorCodes)
	assert.False(t, cfg.Fixer.DeduplicateInFlight)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "fixer:", cfg.Cache.Redis.Prefix)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FIXER_ACCESS_KEY", "xxxpaidxxx")
	t.Setenv("FIXER_ACCESS_TIER", "subscription")
	t.Setenv("FIXER_SYMBOLS", "GBP,CZK,USD")
	t.Setenv("FIXER_SOFT_ERROR_CODES", "302,106")
	t.Setenv("FIXER_DEDUPLICATE", "true")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "xxxpaidxxx", cfg.Fixer.AccessKey)
	assert.Equal(t, model.Subscription, cfg.Fixer.Tier)
	assert.Equal(t, []model.Currency{"GBP", "CZK", "USD"}, cfg.Fixer.Symbols)
	assert.Equal(t, []int{302, 106}, cfg.Fixer.SoftErrorCodes)
	assert.True(t, cfg.Fixer.DeduplicateInFlight)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, 8080, cfg.Server.Port, "invalid values fall back to defaults")
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"tier", "FIXER_ACCESS_TIER", "gold"},
		{"soft codes", "FIXER_SOFT_ERROR_CODES", "106,x"},
		{"cache backend", "CACHE_BACKEND", "memcached"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tc.key, tc.value)

			_, err := LoadConfig()
			assert.ErrorContains(t, err, tc.key)
		})
	}
}
