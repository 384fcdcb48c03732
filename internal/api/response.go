// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/models"
)

// Error codes and types written into ErrorResponse bodies.
const (
	ErrCodeInvalid  = "invalid"
	ErrCodeNotFound = "not_found"
	ErrCodeServer   = "error"

	ErrTypeValidation     = "validation_error"
	ErrTypeInvalidRequest = "invalid_request"
	ErrTypeServer         = "server_error"
)

// serverErrorDetail is the only detail a client sees for a 5xx.
const serverErrorDetail = "A server error occurred."

// respondJSON writes body as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes an ErrorResponse.
func respondError(w http.ResponseWriter, status int, code, errType, detail string) {
	respondJSON(w, status, models.ErrorResponse{
		Detail: detail,
		Code:   code,
		Type:   errType,
	})
}

func respondInvalid(w http.ResponseWriter, detail string) {
	respondError(w, http.StatusBadRequest, ErrCodeInvalid, ErrTypeValidation, detail)
}

func respondNotFound(w http.ResponseWriter, detail string) {
	respondError(w, http.StatusNotFound, ErrCodeNotFound, ErrTypeInvalidRequest, detail)
}

// respondServerError logs err with the request id and hides it from the client.
func respondServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logging.Ctx(r.Context()).Error().Err(err).
		Str("path", r.URL.Path).
		Msg(msg)
	respondError(w, http.StatusInternalServerError, ErrCodeServer, ErrTypeServer, serverErrorDetail)
}
