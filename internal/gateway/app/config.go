package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/service"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	FastStoreNone  = "none"
	FastStoreRedis = "redis"
)

type Config struct {
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 10m)

	DatabaseDriver string // Durable store driver: sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./gateway.db)
	DatabaseURL    string // Postgres connection URL (required for postgres)
	FastStore      string // Volatile store for counters, idempotency and cache: none or redis (default: none)
	RedisURL       string // Redis URL or host:port (required for redis)

	PepperFile     string // File holding the API key fingerprint pepper (default: ./pepper)
	AdminJWTSecret string // Required: HS256 secret for admin tokens, at least 32 bytes
	AdminJWTIssuer string // Issuer expected on admin tokens (default: search-gateway)

	UpstreamURL     string        // Required: base URL of the search providers aggregator
	UpstreamToken   string        // Optional: bearer token sent upstream
	UpstreamTimeout time.Duration // Upper bound on one upstream execution (default: 10s)

	IdempotencyTTL  time.Duration // Replay window for request ids (default: 5m)
	CachePolicyFile string        // Optional: YAML file overriding the cache TTLs

	RateLimitFailOpen   bool // Allow requests when the counter store is down (default: true)
	IdempotencyFailOpen bool // Skip replay when the idempotency store is down (default: true)
	CacheFailOpen       bool // Treat cache store errors as misses (default: true)
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "gateway.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		FastStore:      strings.ToLower(getEnvOrDefault("FAST_STORE", FastStoreNone)),
		RedisURL:       os.Getenv("REDIS_URL"),

		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		AdminJWTIssuer: getEnvOrDefault("ADMIN_JWT_ISSUER", "search-gateway"),

		UpstreamURL:     os.Getenv("UPSTREAM_URL"),
		UpstreamToken:   os.Getenv("UPSTREAM_TOKEN"),
		UpstreamTimeout: getEnvDurationOrDefault("UPSTREAM_TIMEOUT", service.DefaultExecuteTimeout),

		IdempotencyTTL:  getEnvDurationOrDefault("IDEMPOTENCY_TTL", service.DefaultIdempotencyTTL),
		CachePolicyFile: os.Getenv("CACHE_POLICY_FILE"),

		RateLimitFailOpen:   getEnvBoolOrDefault("RATELIMIT_FAIL_OPEN", true),
		IdempotencyFailOpen: getEnvBoolOrDefault("IDEMPOTENCY_FAIL_OPEN", true),
		CacheFailOpen:       getEnvBoolOrDefault("CACHE_FAIL_OPEN", true),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.FastStore {
	case FastStoreNone:
	case FastStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when FAST_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown FAST_STORE %q", c.FastStore))
	}

	if len(c.AdminJWTSecret) < jwtx.MinHMACSecretLength {
		errs = append(errs, fmt.Errorf("ADMIN_JWT_SECRET must be at least %d bytes", jwtx.MinHMACSecretLength))
	}
	if c.UpstreamURL == "" {
		errs = append(errs, errors.New("UPSTREAM_URL is required"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
