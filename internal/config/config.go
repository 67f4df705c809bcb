package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fixer-service/internal/domain/model"
	"fixer-service/internal/service"
)

type Config struct {
	Server ServerConfig
	Fixer  FixerConfig
	Cache  CacheConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type FixerConfig struct {
	BaseURL             string
	AccessKey           string
	Tier                model.AccessTier
	Symbols             []model.Currency
	Timeout             time.Duration
	SoftErrorCodes      []int
	DeduplicateInFlight bool
}

type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

type CacheConfig struct {
	Backend       CacheBackend
	TTL           time.Duration
	SweepInterval time.Duration
	Redis         RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type LogConfig struct {
	Level string
}

// LoadConfig reads the configuration from the environment. Values from a
// .env file in the working directory are loaded first, without overriding
// variables that are already set.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	tier, err := model.ParseAccessTier(getEnvString("FIXER_ACCESS_TIER", "free"))
	if err != nil {
		return nil, fmt.Errorf("FIXER_ACCESS_TIER: %w", err)
	}

	softCodes, err := service.ParseErrorCodes(os.Getenv("FIXER_SOFT_ERROR_CODES"))
	if err != nil {
		return nil, fmt.Errorf("FIXER_SOFT_ERROR_CODES: %w", err)
	}
	if len(softCodes) == 0 {
		softCodes = service.DefaultSoftErrorCodes
	}

	backend := CacheBackend(strings.ToLower(getEnvString("CACHE_BACKEND", string(CacheMemory))))
	switch backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return nil, fmt.Errorf("CACHE_BACKEND: unknown backend %q", backend)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Fixer: FixerConfig{
			BaseURL:             getEnvString("FIXER_BASE_URL", service.DefaultBaseURL),
			AccessKey:           getEnvString("FIXER_ACCESS_KEY", ""),
			Tier:                tier,
			Symbols:             model.ParseSymbols(os.Getenv("FIXER_SYMBOLS")),
			Timeout:             getEnvDuration("FIXER_TIMEOUT", 10*time.Second),
			SoftErrorCodes:      softCodes,
			DeduplicateInFlight: getEnvBool("FIXER_DEDUPLICATE", false),
		},
		Cache: CacheConfig{
			Backend:       backend,
			TTL:           getEnvDuration("CACHE_TTL", service.DefaultTTL),
			SweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),
			Redis: RedisConfig{
				Addr:     getEnvString("REDIS_ADDR", "localhost:6379"),
				Password: getEnvString("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
				Prefix:   getEnvString("REDIS_PREFIX", "fixer:"),
			},
		},
		Log: LogConfig{
			Level: getEnvString("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid value for %s, using default: %t\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid duration for %s, using default: %s\n", key, defaultValue)
		return defaultValue
	}

	return value
}
