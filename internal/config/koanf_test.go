// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.Events.NarrowWindow != 24*time.Hour {
		t.Errorf("Events.NarrowWindow = %v, want 24h", cfg.Events.NarrowWindow)
	}
	if cfg.Events.ClockSkew != 5*time.Second {
		t.Errorf("Events.ClockSkew = %v, want 5s", cfg.Events.ClockSkew)
	}
	if cfg.Events.PageSize != 100 {
		t.Errorf("Events.PageSize = %d, want 100", cfg.Events.PageSize)
	}
	if cfg.Events.PropertyValuesLimit != 10 {
		t.Errorf("Events.PropertyValuesLimit = %d, want 10", cfg.Events.PropertyValuesLimit)
	}
	if cfg.Security.AuthMode != "jwt" {
		t.Errorf("Security.AuthMode = %q, want jwt", cfg.Security.AuthMode)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"EVENTS_NARROW_WINDOW", "events.narrow_window"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("EVENTS_NARROW_WINDOW", "2h")
	t.Setenv("EVENTS_PAGE_SIZE", "25")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Events.NarrowWindow != 2*time.Hour {
		t.Errorf("Events.NarrowWindow = %v, want 2h", cfg.Events.NarrowWindow)
	}
	if cfg.Events.PageSize != 25 {
		t.Errorf("Events.PageSize = %d, want 25", cfg.Events.PageSize)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "events:\n  page_size: 40\n  csv_export_limit: 500\nsecurity:\n  auth_mode: none\n  default_team_id: 7\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("EVENTS_CSV_EXPORT_LIMIT", "900")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Events.PageSize != 40 {
		t.Errorf("file value not applied: PageSize = %d", cfg.Events.PageSize)
	}
	if cfg.Events.CSVExportLimit != 900 {
		t.Errorf("env should override file: CSVExportLimit = %d", cfg.Events.CSVExportLimit)
	}
	if cfg.Security.DefaultTeamID != 7 {
		t.Errorf("DefaultTeamID = %d, want 7", cfg.Security.DefaultTeamID)
	}
}

func TestLoadWithKoanf_RejectsMissingSecret(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "short")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for short JWT secret")
	}
}
