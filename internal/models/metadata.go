// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package models

import "time"

// Team is a tenant. Every event and metadata row belongs to exactly one team.
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	APIToken  string    `json:"api_token"`
	CreatedAt time.Time `json:"created_at"`
}

// Person is an identified or anonymous user aggregating one or more distinct ids.
type Person struct {
	ID           int64          `json:"id"`
	UUID         string         `json:"uuid"`
	TeamID       int64          `json:"-"`
	Properties   map[string]any `json:"properties"`
	IsIdentified bool           `json:"is_identified"`
	DistinctIDs  []string       `json:"distinct_ids"`
	CreatedAt    time.Time      `json:"created_at"`
}

// URL matching modes for an action step.
const (
	URLMatchContains = "contains"
	URLMatchExact    = "exact"
	URLMatchRegex    = "regex"
)

// Action is a named, reusable event definition made of OR-ed steps.
type Action struct {
	ID        int64        `json:"id"`
	TeamID    int64        `json:"team_id"`
	Name      string       `json:"name"`
	Deleted   bool         `json:"deleted"`
	Steps     []ActionStep `json:"steps"`
	CreatedAt time.Time    `json:"created_at"`
}

// ActionStep is one alternative of an action. Empty fields do not constrain.
type ActionStep struct {
	ID          int64            `json:"id"`
	ActionID    int64            `json:"action_id"`
	Event       string           `json:"event,omitempty"`
	URL         string           `json:"url,omitempty"`
	URLMatching string           `json:"url_matching,omitempty"`
	TagName     string           `json:"tag_name,omitempty"`
	Text        string           `json:"text,omitempty"`
	Href        string           `json:"href,omitempty"`
	Properties  []PropertyFilter `json:"properties,omitempty"`
}

// PropertyFilter is one property constraint. Value is a scalar or a list;
// Operator defaults to "exact" and Type to "event".
type PropertyFilter struct {
	Key      string `json:"key" validate:"required"`
	Value    any    `json:"value"`
	Operator string `json:"operator,omitempty" validate:"omitempty,oneof=exact is_not icontains not_icontains regex not_regex gt lt is_set is_not_set"`
	Type     string `json:"type,omitempty" validate:"omitempty,oneof=event person"`
}
