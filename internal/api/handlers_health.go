// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"net/http"

	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/models"
)

const notReadyDetail = "Migrations are not up to date"

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
//
// @Summary Liveness probe
// @Tags Health
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondText(w, http.StatusOK, "ok")
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 503 when the metastore has pending migrations or either store
// fails to answer a ping.
//
// @Summary Readiness probe
// @Tags Health
// @Produce plain
// @Success 200 {string} string "ok"
// @Failure 503 {string} string "Migrations are not up to date"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.Ctx(ctx)

	pending, err := h.meta.HasPendingMigrations()
	if err != nil {
		log.Warn().Err(err).Msg("Readiness: migration status unavailable")
		pending = true
	}
	if pending {
		respondText(w, http.StatusServiceUnavailable, notReadyDetail)
		return
	}
	if err := h.meta.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Readiness: metastore ping failed")
		respondText(w, http.StatusServiceUnavailable, notReadyDetail)
		return
	}
	if err := h.db.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Readiness: event store ping failed")
		respondText(w, http.StatusServiceUnavailable, notReadyDetail)
		return
	}

	respondText(w, http.StatusOK, "ok")
}

// Preflight reports store connectivity and whether any team exists yet.
//
// @Summary Preflight status
// @Tags Health
// @Produce json
// @Success 200 {object} models.PreflightResponse "Store and setup status"
// @Router /health/preflight [get]
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := models.PreflightResponse{
		DB:        h.db.Ping(ctx) == nil,
		Metastore: h.meta.Ping(ctx) == nil,
		Version:   h.version,
		AuthMode:  h.cfg.Security.AuthMode,
	}
	if resp.Metastore {
		teams, err := h.meta.CountTeams(ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Preflight: counting teams failed")
		}
		resp.Initiated = teams > 0
	}

	respondJSON(w, http.StatusOK, resp)
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		logging.Error().Err(err).Msg("Failed to write text response")
	}
}
