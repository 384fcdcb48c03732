// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tracepoint/internal/cache"
	"github.com/tomtom215/tracepoint/internal/database"
	"github.com/tomtom215/tracepoint/internal/events"
	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/models"
)

// ListEvents handles GET /api/v1/events.
//
// JSON responses carry at most limit events and a next URL when more rows
// exist. CSV responses (?format=csv or Accept: text/csv) carry up to the
// export limit and no next URL.
//
// @Summary List events
// @Description Lists a team's events newest first (orderBy=-timestamp) or oldest first (any other orderBy).
// @Description Without an explicit after bound only the last day is searched first, then the full history.
// @Tags Events
// @Produce json
// @Produce text/csv
// @Param after query string false "Lower time bound (exclusive)"
// @Param before query string false "Upper time bound (exclusive)"
// @Param properties query string false "Property filters as JSON"
// @Param action_id query int false "Only events matching this action"
// @Param event query string false "Event name"
// @Param distinct_id query string false "Distinct id"
// @Param person_id query int false "Only events of this person"
// @Param orderBy query string false "-timestamp (default) or any other value for ascending"
// @Param limit query int false "Page size"
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param format query string false "csv for a CSV export"
// @Success 200 {object} models.EventsPage "Page of events"
// @Failure 400 {object} models.ErrorResponse "Invalid filter"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} models.ErrorResponse "Store failure"
// @Security BearerAuth
// @Router /events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	claims, err := requestClaims(r)
	if err != nil {
		respondServerError(w, r, err, "Events request without team")
		return
	}

	f, err := events.ParseFilter(r.URL.Query(), &h.cfg.Events)
	if err != nil {
		respondFilterError(w, r, err)
		return
	}

	csvMode := wantsCSV(r)
	limit := f.Limit
	if csvMode {
		limit = h.cfg.Events.CSVExportLimit
	}

	page, err := h.planner.ListEvents(r.Context(), claims.TeamID, f, limit)
	if err != nil {
		respondFilterError(w, r, err)
		return
	}

	results, err := h.serializer.Serialize(r.Context(), claims.TeamID, page.Rows)
	if err != nil {
		respondServerError(w, r, err, "Event serialization failed")
		return
	}

	if csvMode {
		writeEventsCSV(w, r, results)
		return
	}

	body := models.EventsPage{Results: results}
	if page.Next != nil {
		next := events.NextURL(absoluteURL(r), page.Next)
		body.Next = &next
	}
	respondJSON(w, http.StatusOK, body)
}

// GetEvent handles GET /api/v1/events/{id}.
//
// @Summary Get one event
// @Tags Events
// @Produce json
// @Param id path string true "Event UUID"
// @Success 200 {object} models.Event "Event"
// @Failure 400 {object} models.ErrorResponse "Invalid UUID"
// @Failure 404 {object} models.ErrorResponse "No event with this id"
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	claims, err := requestClaims(r)
	if err != nil {
		respondServerError(w, r, err, "Event request without team")
		return
	}

	id := chi.URLParam(r, "id")
	row, err := h.planner.GetEvent(r.Context(), claims.TeamID, id)
	switch {
	case errors.Is(err, events.ErrInvalidEventID):
		respondInvalid(w, "Invalid UUID")
		return
	case errors.Is(err, database.ErrEventNotFound):
		respondNotFound(w, fmt.Sprintf("No events exist for event UUID %s", id))
		return
	case err != nil:
		respondServerError(w, r, err, "Event lookup failed")
		return
	}

	results, err := h.serializer.Serialize(r.Context(), claims.TeamID, []models.EventRow{*row})
	if err != nil {
		respondServerError(w, r, err, "Event serialization failed")
		return
	}
	respondJSON(w, http.StatusOK, results[0])
}

// PropertyValues handles GET /api/v1/events/values?key=&value=.
//
// @Summary List property values
// @Description Distinct values of a property for filter pickers, or custom event names when key=custom_event.
// @Tags Events
// @Produce json
// @Param key query string true "Property key or custom_event"
// @Param value query string false "Substring the values must contain"
// @Success 200 {array} models.PropertyValue "Distinct values"
// @Failure 500 {object} models.ErrorResponse "Store failure"
// @Security BearerAuth
// @Router /events/values [get]
func (h *Handler) PropertyValues(w http.ResponseWriter, r *http.Request) {
	claims, err := requestClaims(r)
	if err != nil {
		respondServerError(w, r, err, "Values request without team")
		return
	}

	key := r.URL.Query().Get("key")
	contains := r.URL.Query().Get("value")
	if key == events.CustomEventKey {
		contains = ""
	}

	cacheKey := cache.GenerateKey("values", struct {
		Team     int64
		Key      string
		Contains string
	}{claims.TeamID, key, contains})

	names, ok := h.valueCache.Get(cacheKey)
	if !ok {
		names, err = h.values.List(r.Context(), claims.TeamID, key, contains)
		if err != nil {
			respondServerError(w, r, err, "Property values lookup failed")
			return
		}
		h.valueCache.Set(cacheKey, names)
	}

	out := make([]models.PropertyValue, len(names))
	for i, name := range names {
		out[i] = models.PropertyValue{Name: name}
	}
	logging.Ctx(r.Context()).Debug().Str("key", key).Int("values", len(out)).Bool("cached", ok).
		Msg("Listed property values")
	respondJSON(w, http.StatusOK, out)
}

// wantsCSV reports whether the client asked for a CSV rendering.
func wantsCSV(r *http.Request) bool {
	if format := r.URL.Query().Get("format"); format != "" {
		return strings.EqualFold(format, "csv")
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}

// absoluteURL reconstructs the URL the client used, honoring a proxy's
// X-Forwarded-Proto.
func absoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		u.Scheme = proto
	}
	u.Host = r.Host
	return &u
}
