// Package config provides environment-driven configuration for the model parser.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultCacheSize is the model and graph cache capacity used when
// CACHE_SIZE is unset or unusable.
const DefaultCacheSize = 2

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL    Secret
	Port           string
	ListenHost     string
	CORSOrigins    []string
	LogLevel       string
	CacheSize      int
	GraphCacheSize int
	DBMaxConns     int
	APIKeys        []Secret
	RunMigrations  bool
	EnableEvents   bool
}

// Load reads configuration from the environment. Variables found in the
// optional dotenv files (".env" when none are named) fill in anything the
// environment does not already set.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:   Secret(envOrDefault("DATABASE_URL", "")),
		Port:          envOrDefault("PORT", "3000"),
		ListenHost:    envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		CORSOrigins:   splitList(envOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		CacheSize:     cacheSize(os.Getenv("CACHE_SIZE"), DefaultCacheSize),
		RunMigrations: envBool("RUN_MIGRATIONS", true),
		EnableEvents:  envBool("ENABLE_EVENTS", true),
	}

	cfg.GraphCacheSize = cacheSize(os.Getenv("GRAPH_CACHE_SIZE"), cfg.CacheSize)

	for _, k := range splitList(os.Getenv("API_KEYS")) {
		cfg.APIKeys = append(cfg.APIKeys, Secret(k))
	}

	maxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "5"))
	if err != nil || maxConns < 1 || maxConns > 100 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 1 and 100")
	}

	cfg.DBMaxConns = maxConns

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// RawAPIKeys returns the configured API keys in clear text.
func (c *Config) RawAPIKeys() []string {
	keys := make([]string, len(c.APIKeys))
	for i, k := range c.APIKeys {
		keys[i] = k.Value()
	}

	return keys
}

// AuthEnabled reports whether at least one API key is configured.
func (c *Config) AuthEnabled() bool {
	return len(c.APIKeys) > 0
}

// cacheSize parses a cache capacity. Bad or non-positive values fall back
// to def instead of failing startup.
func cacheSize(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}

	return n
}

func splitList(raw string) []string {
	var out []string

	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return v
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
