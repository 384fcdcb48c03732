// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/models"
)

// Supported values of security.auth_mode.
const (
	ModeNone = "none"
	ModeJWT  = "jwt"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// Middleware resolves the team every request is scoped to.
type Middleware struct {
	jwtManager    *JWTManager
	authMode      string
	defaultTeamID int64
}

// NewMiddleware builds the authentication middleware. In none mode every
// request is scoped to the configured default team.
func NewMiddleware(cfg *config.SecurityConfig) (*Middleware, error) {
	m := &Middleware{
		authMode:      cfg.AuthMode,
		defaultTeamID: cfg.DefaultTeamID,
	}
	switch cfg.AuthMode {
	case ModeNone:
	case ModeJWT:
		manager, err := NewJWTManager(cfg)
		if err != nil {
			return nil, err
		}
		m.jwtManager = manager
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}
	return m, nil
}

// Mode returns the configured auth mode.
func (m *Middleware) Mode() string {
	return m.authMode
}

// Authenticate stores the caller's claims and team id in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == ModeNone {
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), &Claims{TeamID: m.defaultTeamID})))
			return
		}

		token, problem := extractJWTToken(r)
		if problem != "" {
			sendUnauthorized(w, problem)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Token validation failed")
			sendUnauthorized(w, "Invalid token.")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

func withClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, ClaimsContextKey, claims)
	return logging.ContextWithTeamID(ctx, claims.TeamID)
}

// extractJWTToken reads the bearer token from the Authorization header. The
// second result is the client-facing problem when no token could be read.
func extractJWTToken(r *http.Request) (token, problem string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "Authentication credentials were not provided."
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", "Invalid authorization header."
	}

	return parts[1], ""
}

func sendUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="tracepoint"`)
	w.WriteHeader(http.StatusUnauthorized)
	body := models.ErrorResponse{
		Detail: detail,
		Code:   "not_authenticated",
		Type:   "authentication_error",
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write unauthorized response")
	}
}
