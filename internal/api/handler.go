// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package api serves the event query API over a chi router.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/tracepoint/internal/auth"
	"github.com/tomtom215/tracepoint/internal/cache"
	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/events"
)

// Pinger reports whether a store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Metastore is the part of the metadata store the handlers touch directly.
type Metastore interface {
	Pinger
	HasPendingMigrations() (bool, error)
	CountTeams(ctx context.Context) (int64, error)
	MarkRecordingViewed(ctx context.Context, teamID, userID int64, sessionID string) error
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Planner    *events.Planner
	Serializer *events.Serializer
	Values     *events.ValueLister
	Sessions   *events.SessionLister
	DB         Pinger
	Metastore  Metastore
	Config     *config.Config
	Version    string
}

// Handler holds the HTTP handlers of the API.
type Handler struct {
	planner    *events.Planner
	serializer *events.Serializer
	values     *events.ValueLister
	sessions   *events.SessionLister
	db         Pinger
	meta       Metastore
	cfg        *config.Config
	version    string
	startTime  time.Time

	// valueCache holds property value listings per team, key and search term.
	valueCache *cache.TTL[[]string]
}

// NewHandler creates a Handler. Close releases the value cache.
func NewHandler(d Deps) *Handler {
	return &Handler{
		planner:    d.Planner,
		serializer: d.Serializer,
		values:     d.Values,
		sessions:   d.Sessions,
		db:         d.DB,
		meta:       d.Metastore,
		cfg:        d.Config,
		version:    d.Version,
		startTime:  time.Now(),
		valueCache: cache.New[[]string]("property_values", d.Config.Cache.PropertyValuesTTL),
	}
}

// Close stops background work owned by the handler.
func (h *Handler) Close() {
	h.valueCache.Close()
}

// requestClaims returns the claims set by the auth middleware.
func requestClaims(r *http.Request) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.TeamID <= 0 {
		return nil, ErrMissingTeam
	}
	return claims, nil
}
