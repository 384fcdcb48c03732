// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/tracepoint/internal/events"
)

// Common API errors
var (
	// ErrMissingTeam indicates a request reached a handler without a team scope
	ErrMissingTeam = errors.New("request has no team scope")
)

// respondFilterError maps an error from the events package to a response.
// Filter errors are client errors and carry their message; anything else
// is a server error.
func respondFilterError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, events.ErrInvalidFilter) {
		respondInvalid(w, filterDetail(err))
		return
	}
	respondServerError(w, r, err, "Event listing failed")
}

// filterDetail strips the sentinel prefix from a wrapped filter error.
func filterDetail(err error) string {
	msg := err.Error()
	prefix := events.ErrInvalidFilter.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}
