// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/auth"
	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/events"
	"github.com/tomtom215/tracepoint/internal/filters"
	"github.com/tomtom215/tracepoint/internal/metastore"
	"github.com/tomtom215/tracepoint/internal/models"
)

const testJWTSecret = "api_test_secret_with_more_than_32_characters"

func testConfig() *config.Config {
	return &config.Config{
		Events: config.EventsConfig{
			NarrowWindow:        24 * time.Hour,
			ClockSkew:           5 * time.Second,
			PageSize:            100,
			MaxPageSize:         1000,
			CSVExportLimit:      50,
			PropertyValuesLimit: 10,
			SessionsPageSize:    50,
			SessionGap:          30 * time.Minute,
			PersonChunkSize:     100,
			PersonConcurrency:   2,
		},
		Security: config.SecurityConfig{
			AuthMode:          auth.ModeJWT,
			JWTSecret:         testJWTSecret,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
		Cache: config.CacheConfig{PropertyValuesTTL: time.Minute},
	}
}

// testEnv is a fully wired API over an in-memory event store and a
// temporary metastore.
type testEnv struct {
	db     *database.DB
	meta   *metastore.Store
	team   *models.Team
	token  string
	server http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()

	db := database.OpenTestDB(t)
	meta := metastore.OpenTestStore(t)

	team, err := meta.CreateTeam(ctx, "Test Team")
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}

	resolver := metastore.NewPersonResolver(meta, &cfg.Events, nil)
	props := filters.NewCompiler(meta)
	h := NewHandler(Deps{
		Planner:    events.NewPlanner(db, meta, meta, props, filters.NewActionCompiler(props), &cfg.Events),
		Serializer: events.NewSerializer(resolver),
		Values:     events.NewValueLister(db, cfg.Events.PropertyValuesLimit),
		Sessions:   events.NewSessionLister(db, resolver, &cfg.Events),
		DB:         db,
		Metastore:  meta,
		Config:     cfg,
		Version:    "test",
	})
	t.Cleanup(h.Close)

	authMW, err := auth.NewMiddleware(&cfg.Security)
	if err != nil {
		t.Fatalf("NewMiddleware: %v", err)
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	token, err := jwtManager.GenerateToken(team.ID, 11, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	router := NewRouter(h, authMW, NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&cfg.Security)))
	return &testEnv{db: db, meta: meta, team: team, token: token, server: router.SetupChi()}
}

// get issues an authenticated GET against the router.
func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	return e.request(t, target, e.token, "")
}

// request issues a GET with an optional bearer token and Accept header.
func (e *testEnv) request(t *testing.T, target, token, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, detail string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	body := decodeBody[models.ErrorResponse](t, rec)
	if body.Code != code {
		t.Errorf("code = %q, want %q", body.Code, code)
	}
	if detail != "" && body.Detail != detail {
		t.Errorf("detail = %q, want %q", body.Detail, detail)
	}
}
