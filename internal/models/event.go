// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package models

import "time"

// EventRow is a row of the events table. Properties holds the raw JSON
// object as stored.
type EventRow struct {
	UUID          string
	Event         string
	Properties    string
	Timestamp     time.Time
	TeamID        int64
	DistinctID    string
	ElementsChain string
	CreatedAt     time.Time
}

// Event is the API representation of an event.
type Event struct {
	ID            string         `json:"id"`
	DistinctID    string         `json:"distinct_id"`
	Properties    map[string]any `json:"properties"`
	Event         string         `json:"event"`
	Timestamp     time.Time      `json:"timestamp"`
	Person        *Person        `json:"person"`
	Elements      []Element      `json:"elements"`
	ElementsChain string         `json:"elements_chain"`
}

// Element is one DOM element of an autocapture elements chain.
type Element struct {
	TagName    string            `json:"tag_name"`
	Text       string            `json:"text,omitempty"`
	Href       string            `json:"href,omitempty"`
	AttrID     string            `json:"attr_id,omitempty"`
	AttrClass  []string          `json:"attr_class,omitempty"`
	NthChild   int               `json:"nth_child"`
	NthOfType  int               `json:"nth_of_type"`
	Attributes map[string]string `json:"attributes"`
	Order      int               `json:"order"`
}

// NewEvent is an event to be written into the event store.
type NewEvent struct {
	UUID          string
	Event         string
	Properties    map[string]any
	Timestamp     time.Time
	TeamID        int64
	DistinctID    string
	ElementsChain string
}
