// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/models"
	"github.com/tomtom215/tracepoint/internal/validation"
)

// Sessions handles GET /api/v1/events/sessions?date_from=&date_to=&offset=.
//
// @Summary List sessions
// @Description Groups events into sessions per distinct id, newest first, with offset pagination.
// @Tags Sessions
// @Produce json
// @Param date_from query string false "Start of the range (default: one day ago)"
// @Param date_to query string false "End of the range (default: now)"
// @Param offset query int false "Sessions to skip"
// @Success 200 {object} models.SessionsPage "Page of sessions"
// @Failure 400 {object} models.ErrorResponse "Invalid range or offset"
// @Security BearerAuth
// @Router /events/sessions [get]
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	claims, err := requestClaims(r)
	if err != nil {
		respondServerError(w, r, err, "Sessions request without team")
		return
	}

	q := r.URL.Query()
	from, ok := optionalTimeParam(w, q.Get("date_from"), "date_from")
	if !ok {
		return
	}
	to, ok := optionalTimeParam(w, q.Get("date_to"), "date_to")
	if !ok {
		return
	}
	if from != nil && to != nil && from.After(*to) {
		respondInvalid(w, "date_from must not be later than date_to")
		return
	}

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			respondInvalid(w, "offset must be a non-negative integer")
			return
		}
	}

	page, err := h.sessions.List(r.Context(), claims.TeamID, from, to, offset)
	if err != nil {
		respondServerError(w, r, err, "Session listing failed")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// SessionRecording handles GET /api/v1/events/session_recording.
//
// @Summary Get a session recording
// @Tags Sessions
// @Produce json
// @Param session_recording_id query string true "Session id"
// @Param save_view query bool false "Record that the caller viewed the recording"
// @Success 200 {object} models.SessionRecordingResponse "Recording snapshots"
// @Failure 400 {object} models.ErrorResponse "Missing session_recording_id"
// @Security BearerAuth
// @Router /events/session_recording [get]
func (h *Handler) SessionRecording(w http.ResponseWriter, r *http.Request) {
	claims, err := requestClaims(r)
	if err != nil {
		respondServerError(w, r, err, "Recording request without team")
		return
	}

	sessionID := r.URL.Query().Get("session_recording_id")
	if sessionID == "" {
		respondInvalid(w, "The query parameter session_recording_id is required for this endpoint.")
		return
	}

	rec, err := h.sessions.Recording(r.Context(), claims.TeamID, sessionID)
	if err != nil {
		respondServerError(w, r, err, "Session recording lookup failed")
		return
	}

	if truthy(r.URL.Query().Get("save_view")) {
		if claims.UserID <= 0 {
			logging.Ctx(r.Context()).Debug().Str("session_id", sessionID).
				Msg("Recording view not saved, request has no user")
		} else if err := h.meta.MarkRecordingViewed(r.Context(), claims.TeamID, claims.UserID, sessionID); err != nil {
			respondServerError(w, r, err, "Saving recording view failed")
			return
		}
	}

	respondJSON(w, http.StatusOK, models.SessionRecordingResponse{Result: *rec})
}

func optionalTimeParam(w http.ResponseWriter, raw, name string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := validation.ParseTimestamp(raw)
	if err != nil {
		respondInvalid(w, name+" must be an ISO 8601 timestamp")
		return nil, false
	}
	return &t, true
}

// truthy accepts the usual spellings of a boolean query flag.
func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
