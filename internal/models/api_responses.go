// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package models

// EventsPage is the list endpoint envelope. Next is null on the last page.
type EventsPage struct {
	Next    *string `json:"next"`
	Results []Event `json:"results"`
}

// PropertyValue is one entry of the property values endpoint.
type PropertyValue struct {
	Name string `json:"name"`
}

// SessionsPagination carries the offset of the next sessions page.
type SessionsPagination struct {
	Offset int `json:"offset"`
}

// SessionsPage is the sessions endpoint envelope.
type SessionsPage struct {
	Result     []Session           `json:"result"`
	Pagination *SessionsPagination `json:"pagination"`
}

// SessionRecordingResponse wraps a recording.
type SessionRecordingResponse struct {
	Result SessionRecording `json:"result"`
}

// ErrorResponse is the body of every 4xx/5xx response.
//
//	{"detail": "Invalid UUID", "code": "invalid", "type": "validation_error"}
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Type   string `json:"type"`
}

// PreflightResponse reports readiness of the stores for first-run setup.
type PreflightResponse struct {
	DB        bool   `json:"db"`
	Metastore bool   `json:"metastore"`
	Initiated bool   `json:"initiated"`
	Version   string `json:"version"`
	AuthMode  string `json:"auth_mode"`
}
