// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables, optionally seeded
// from a .env file in the working directory.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of origins allowed to call the editor API.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// MaxBodyBytes caps editor API request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// RandomRateLimit is the number of /random requests allowed per client IP
	// per minute. Zero disables the limit.
	RandomRateLimit int `env:"RANDOM_RATE_LIMIT" envDefault:"60"`

	// AdsTxtURL is where /ads.txt redirects. Empty means /ads.txt is a 404.
	AdsTxtURL string `env:"ADS_TXT_URL"`

	EdgeCache EdgeCacheConfig `envPrefix:"EDGE_CACHE_"`
}

// EdgeCacheConfig tunes how purges reach the edge cache. Credentials are per
// tenant and live in the database, not here.
type EdgeCacheConfig struct {
	// APIURL overrides the edge cache provider's API base URL.
	APIURL string `env:"API_URL"`

	// Async delivers purges through a bounded background queue with retries
	// instead of inline with the write.
	Async       bool          `env:"ASYNC" envDefault:"false"`
	Workers     int           `env:"WORKERS" envDefault:"2"`
	QueueSize   int           `env:"QUEUE_SIZE" envDefault:"256"`
	MaxRetries  uint64        `env:"MAX_RETRIES" envDefault:"3"`
	BaseBackoff time.Duration `env:"BACKOFF" envDefault:"500ms"`
}

// Load reads configuration from environment variables and returns a Config.
// A .env file, when present, fills in variables that are not already set.
// Returns an error naming any required variables that are not set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	return cfg, nil
}

// trimAll trims each entry, dropping empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
