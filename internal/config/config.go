// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package config loads Tracepoint configuration from defaults, an optional
// YAML file and environment variables (in increasing priority) using koanf.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Metastore MetastoreConfig `koanf:"metastore"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
	Cache     CacheConfig     `koanf:"cache"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings for the event store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// MetastoreConfig holds SQLite settings for teams, actions and persons.
type MetastoreConfig struct {
	Path         string `koanf:"path"`
	ReadPoolSize int    `koanf:"read_pool_size"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// EventsConfig controls the event listing behaviour.
//
// Environment Variables:
//   - EVENTS_NARROW_WINDOW: default lookback of an unbounded listing (default: 24h)
//   - EVENTS_CLOCK_SKEW: tolerance added to "now" for the upper bound (default: 5s)
//   - EVENTS_PAGE_SIZE: rows per page (default: 100)
//   - EVENTS_MAX_PAGE_SIZE: largest accepted ?limit (default: 1000)
//   - EVENTS_CSV_EXPORT_LIMIT: rows in a CSV export (default: 10000)
type EventsConfig struct {
	NarrowWindow        time.Duration `koanf:"narrow_window"`
	ClockSkew           time.Duration `koanf:"clock_skew"`
	PageSize            int           `koanf:"page_size"`
	MaxPageSize         int           `koanf:"max_page_size"`
	CSVExportLimit      int           `koanf:"csv_export_limit"`
	PropertyValuesLimit int           `koanf:"property_values_limit"`
	SessionsPageSize    int           `koanf:"sessions_page_size"`
	SessionGap          time.Duration `koanf:"session_gap"`
	PersonChunkSize     int           `koanf:"person_chunk_size"`
	PersonConcurrency   int           `koanf:"person_concurrency"`
}

// SecurityConfig holds authentication and request-shaping settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // none or jwt
	JWTSecret         string        `koanf:"jwt_secret"`
	DefaultTeamID     int64         `koanf:"default_team_id"` // team used when auth_mode=none
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// CacheConfig holds in-memory cache settings.
type CacheConfig struct {
	PropertyValuesTTL time.Duration `koanf:"property_values_ttl"`
}

// BreakerConfig tunes the circuit breaker around person resolution.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	FailureRatio float64       `koanf:"failure_ratio"`
	MinRequests  uint32        `koanf:"min_requests"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load is the entry point used by the binaries.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
