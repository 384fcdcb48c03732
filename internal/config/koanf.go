// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched in order; the first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tracepoint/config.yaml",
	"/etc/tracepoint/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/events.duckdb",
			MaxMemory: "2GB",
		},
		Metastore: MetastoreConfig{
			Path:         "/data/tracepoint.sqlite",
			ReadPoolSize: 4,
			AutoMigrate:  true,
		},
		Events: EventsConfig{
			NarrowWindow:        24 * time.Hour,
			ClockSkew:           5 * time.Second,
			PageSize:            100,
			MaxPageSize:         1000,
			CSVExportLimit:      10000,
			PropertyValuesLimit: 10,
			SessionsPageSize:    50,
			SessionGap:          30 * time.Minute,
			PersonChunkSize:     500,
			PersonConcurrency:   4,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			DefaultTeamID:   1,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Cache: CacheConfig{
			PropertyValuesTTL: time.Minute,
		},
		Breaker: BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			FailureRatio: 0.6,
			MinRequests:  5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"metastore_path":           "metastore.path",
	"metastore_read_pool_size": "metastore.read_pool_size",
	"metastore_auto_migrate":   "metastore.auto_migrate",

	"events_narrow_window":         "events.narrow_window",
	"events_clock_skew":            "events.clock_skew",
	"events_page_size":             "events.page_size",
	"events_max_page_size":         "events.max_page_size",
	"events_csv_export_limit":      "events.csv_export_limit",
	"events_property_values_limit": "events.property_values_limit",
	"events_sessions_page_size":    "events.sessions_page_size",
	"events_session_gap":           "events.session_gap",
	"events_person_chunk_size":     "events.person_chunk_size",
	"events_person_concurrency":    "events.person_concurrency",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"default_team_id":     "security.default_team_id",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"cache_property_values_ttl": "cache.property_values_ttl",

	"person_breaker_max_requests":  "breaker.max_requests",
	"person_breaker_interval":      "breaker.interval",
	"person_breaker_timeout":       "breaker.timeout",
	"person_breaker_failure_ratio": "breaker.failure_ratio",
	"person_breaker_min_requests":  "breaker.min_requests",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
//   - DUCKDB_PATH -> database.path
//   - EVENTS_NARROW_WINDOW -> events.narrow_window
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
