// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

/*
Package models defines the data structures shared by the stores, the event
query planner and the HTTP layer.

Storage models:
  - EventRow: one row of the events table in DuckDB
  - SessionRecordingEvent: one snapshot of a session recording
  - Team, Action, ActionStep, Person: relational metadata kept in SQLite

API models:
  - Event: the serialized form of an EventRow with its person attached
  - EventsPage: the {next, results} envelope of the list endpoint
  - ErrorResponse: the {detail, code, type} error body
*/
package models
