// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package config

import (
	"fmt"
	"strings"
	"time"
)

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// minJWTSecretLength is the shortest accepted HS256 secret.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStores(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateStores() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Metastore.Path == "" {
		return fmt.Errorf("METASTORE_PATH is required")
	}
	if c.Metastore.ReadPoolSize < 1 {
		return fmt.Errorf("METASTORE_READ_POOL_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := c.Events
	switch {
	case e.NarrowWindow <= 0:
		return fmt.Errorf("EVENTS_NARROW_WINDOW must be positive")
	case e.ClockSkew < 0:
		return fmt.Errorf("EVENTS_CLOCK_SKEW must not be negative")
	case e.PageSize < 1:
		return fmt.Errorf("EVENTS_PAGE_SIZE must be at least 1")
	case e.MaxPageSize < e.PageSize:
		return fmt.Errorf("EVENTS_MAX_PAGE_SIZE (%d) must be >= EVENTS_PAGE_SIZE (%d)", e.MaxPageSize, e.PageSize)
	case e.CSVExportLimit < 1:
		return fmt.Errorf("EVENTS_CSV_EXPORT_LIMIT must be at least 1")
	case e.PropertyValuesLimit < 1:
		return fmt.Errorf("EVENTS_PROPERTY_VALUES_LIMIT must be at least 1")
	case e.SessionsPageSize < 1:
		return fmt.Errorf("EVENTS_SESSIONS_PAGE_SIZE must be at least 1")
	case e.SessionGap <= 0:
		return fmt.Errorf("EVENTS_SESSION_GAP must be positive")
	case e.PersonChunkSize < 1:
		return fmt.Errorf("EVENTS_PERSON_CHUNK_SIZE must be at least 1")
	case e.PersonConcurrency < 1:
		return fmt.Errorf("EVENTS_PERSON_CONCURRENCY must be at least 1")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
		if c.Security.DefaultTeamID < 1 {
			return fmt.Errorf("DEFAULT_TEAM_ID is required when AUTH_MODE=none")
		}
	case "jwt":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}

	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
