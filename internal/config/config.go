// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the profile store: memory or postgres.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the Postgres DSN used by the postgres driver.
	DatabaseURL string `koanf:"database_url"`

	// SeedFile optionally preloads the memory store from YAML.
	SeedFile string `koanf:"seed_file"`

	// FallbackFile replaces the embedded demo dataset.
	FallbackFile string `koanf:"fallback_file"`

	// DefaultK, DefaultLimit and MaxLimit bound ranking and recommendation
	// sizes.
	DefaultK     int `koanf:"default_k"`
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// RecommendationSeed fixes the recommendation percentage sequence; zero
	// seeds from the clock.
	RecommendationSeed int64 `koanf:"recommendation_seed"`

	// StoreTimeoutMS bounds every profile store call.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`

	// Circuit breaker settings around the profile store.
	BreakerMaxRequests      int `koanf:"breaker_max_requests"`
	BreakerIntervalMS       int `koanf:"breaker_interval_ms"`
	BreakerTimeoutMS        int `koanf:"breaker_timeout_ms"`
	BreakerFailureThreshold int `koanf:"breaker_failure_threshold"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		StoreDriver:             DriverMemory,
		DefaultK:                6,
		DefaultLimit:            5,
		MaxLimit:                50,
		StoreTimeoutMS:          2000,
		BreakerMaxRequests:      1,
		BreakerIntervalMS:       60_000,
		BreakerTimeoutMS:        30_000,
		BreakerFailureThreshold: 5,
	}
}

// Validate checks ranges and cross-field requirements.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store_driver %q", c.StoreDriver))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}
	if c.DefaultK <= 0 || c.DefaultLimit <= 0 {
		problems = append(problems, "default_k and default_limit must be positive")
	}
	if c.MaxLimit < c.DefaultK || c.MaxLimit < c.DefaultLimit {
		problems = append(problems, "max_limit must not be below the defaults")
	}
	if c.StoreTimeoutMS <= 0 {
		problems = append(problems, "store_timeout_ms must be positive")
	}
	if c.BreakerMaxRequests <= 0 || c.BreakerFailureThreshold <= 0 {
		problems = append(problems, "breaker_max_requests and breaker_failure_threshold must be positive")
	}
	if c.BreakerIntervalMS < 0 || c.BreakerTimeoutMS <= 0 {
		problems = append(problems, "breaker_interval_ms must not be negative and breaker_timeout_ms must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// StoreTimeout returns StoreTimeoutMS as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

// BreakerInterval returns BreakerIntervalMS as a duration.
func (c *Config) BreakerInterval() time.Duration {
	return time.Duration(c.BreakerIntervalMS) * time.Millisecond
}

// BreakerTimeout returns BreakerTimeoutMS as a duration.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutMS) * time.Millisecond
}
