// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	teamIDKey    contextKey = "team_id"
)

// GenerateRequestID creates a new request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a context carrying the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithTeamID returns a context carrying the authenticated team, so
// every log line of a request is attributable to a tenant.
func ContextWithTeamID(ctx context.Context, teamID int64) context.Context {
	return context.WithValue(ctx, teamIDKey, teamID)
}

// TeamIDFromContext returns the team ID and whether one was set.
func TeamIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(teamIDKey).(int64)
	return id, ok
}

// Ctx returns the global logger enriched with request_id and team_id when
// present in ctx.
//
//	logging.Ctx(ctx).Info().Int("rows", n).Msg("Events listed")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if team, ok := TeamIDFromContext(ctx); ok {
		logCtx = logCtx.Int64("team_id", team)
	}
	l := logCtx.Logger()
	return &l
}
