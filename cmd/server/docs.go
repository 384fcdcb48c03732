// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// @title Tracepoint API
// @version 1.0
// @description Team-scoped query API over product analytics events.
// @description
// @description ## Authentication
// @description
// @description Event endpoints require a team-scoped HS256 bearer token
// @description (`tracepointctl token --team N`) unless the server runs with AUTH_MODE=none.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {"detail": "Human-readable message", "code": "invalid", "type": "validation_error"}
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/tracepoint/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Bearer <token>"
//
// @tag.name Events
// @tag.description Event listing, lookup and property values
//
// @tag.name Sessions
// @tag.description Sessions and session recordings
//
// @tag.name Health
// @tag.description Liveness, readiness and preflight

package main
