// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/tracepoint/internal/models"
)

// stubMetastore drives the readiness branches without SQLite.
type stubMetastore struct {
	pending bool
	pingErr error
	teams   int64
}

func (s stubMetastore) Ping(context.Context) error { return s.pingErr }

func (s stubMetastore) HasPendingMigrations() (bool, error) { return s.pending, nil }

func (s stubMetastore) CountTeams(context.Context) (int64, error) { return s.teams, nil }

func (s stubMetastore) MarkRecordingViewed(context.Context, int64, int64, string) error { return nil }

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newHealthHandler(t *testing.T, db Pinger, meta Metastore) *Handler {
	t.Helper()
	h := NewHandler(Deps{DB: db, Metastore: meta, Config: testConfig(), Version: "1.2.3"})
	t.Cleanup(h.Close)
	return h
}

func TestHealthLive(t *testing.T) {
	t.Parallel()
	h := newHealthHandler(t, stubPinger{}, stubMetastore{})

	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		db         Pinger
		meta       stubMetastore
		wantStatus int
	}{
		{"ready", stubPinger{}, stubMetastore{}, http.StatusOK},
		{"pending migrations", stubPinger{}, stubMetastore{pending: true}, http.StatusServiceUnavailable},
		{"metastore down", stubPinger{}, stubMetastore{pingErr: errors.New("closed")}, http.StatusServiceUnavailable},
		{"event store down", stubPinger{err: errors.New("closed")}, stubMetastore{}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHealthHandler(t, tt.db, tt.meta)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK && !strings.Contains(rec.Body.String(), notReadyDetail) {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	t.Parallel()
	h := newHealthHandler(t, stubPinger{err: errors.New("down")}, stubMetastore{teams: 2})

	rec := httptest.NewRecorder()
	h.Preflight(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/preflight", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeBody[models.PreflightResponse](t, rec)
	want := models.PreflightResponse{DB: false, Metastore: true, Initiated: true, Version: "1.2.3", AuthMode: "jwt"}
	if got != want {
		t.Errorf("preflight = %+v, want %+v", got, want)
	}
}

func TestRouter_PublicEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready", "/api/v1/health/preflight", "/metrics"} {
		rec := env.request(t, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200 without auth", path, rec.Code)
		}
	}

	rec := env.request(t, "/api/v1/nope", "", "")
	expectError(t, rec, http.StatusNotFound, ErrCodeNotFound, "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
