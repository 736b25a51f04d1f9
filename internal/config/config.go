// Package config defines service configuration and how it is loaded.
package config

import (
	"time"

	"github.com/okian/podium/internal/domain/scoring"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Store selects the score entry backend: memory or postgres.
	Store string `koanf:"store"`

	// PostgresDSN is used when Store is postgres. Communities and sports
	// are then read from the same database.
	PostgresDSN string `koanf:"postgres_dsn"`

	// DirectorySeed optionally points to a YAML file of communities and sports
	// loaded at startup.
	DirectorySeed string `koanf:"directory_seed"`

	// Podium points per place.
	PointsGold   int `koanf:"points_gold"`
	PointsSilver int `koanf:"points_silver"`
	PointsBronze int `koanf:"points_bronze"`

	// CacheEnabled turns on the ranking view cache.
	CacheEnabled bool `koanf:"cache_enabled"`

	// LockWaitTimeoutMS bounds how long a write waits for its sport lock.
	LockWaitTimeoutMS int `koanf:"lock_wait_timeout_ms"`

	// RequestTimeoutMS bounds each HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		Store:             StoreMemory,
		PointsGold:        scoring.DefaultGoldPoints,
		PointsSilver:      scoring.DefaultSilverPoints,
		PointsBronze:      scoring.DefaultBronzePoints,
		CacheEnabled:      false,
		LockWaitTimeoutMS: 5_000,
		RequestTimeoutMS:  10_000,
		ShutdownTimeoutMS: 10_000,
	}
}

// Scheme returns the scoring scheme described by the points settings.
func (c *Config) Scheme() scoring.Scheme {
	return scoring.NewScheme(scoring.WithPoints(c.PointsGold, c.PointsSilver, c.PointsBronze))
}

// LockWait returns the sport lock wait bound.
func (c *Config) LockWait() time.Duration {
	return time.Duration(c.LockWaitTimeoutMS) * time.Millisecond
}

// RequestTimeout returns the per-request bound.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
