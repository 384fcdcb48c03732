// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// Cursor directions, named after the query parameter they set.
const (
	DirectionAfter  = "after"
	DirectionBefore = "before"
)

// CursorTimeFormat is the fixed-width UTC form written into next URLs.
const CursorTimeFormat = "2006-01-02T15:04:05.000000Z"

// Cursor points past the last row of a page.
type Cursor struct {
	Direction string    `json:"d"`
	Timestamp time.Time `json:"t"`
}

// NewCursor returns the cursor following a row at ts for the given order.
func NewCursor(ascending bool, ts time.Time) *Cursor {
	dir := DirectionBefore
	if ascending {
		dir = DirectionAfter
	}
	return &Cursor{Direction: dir, Timestamp: ts.UTC()}
}

// Param returns the query parameter the cursor overwrites.
func (c *Cursor) Param() string {
	return c.Direction
}

// Value returns the timestamp in CursorTimeFormat.
func (c *Cursor) Value() string {
	return c.Timestamp.UTC().Format(CursorTimeFormat)
}

// Encode returns the opaque form accepted back through ?cursor=.
func (c *Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses an Encode result.
func DecodeCursor(s string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	if c.Direction != DirectionAfter && c.Direction != DirectionBefore {
		return nil, fmt.Errorf("malformed cursor: unknown direction %q", c.Direction)
	}
	if c.Timestamp.IsZero() {
		return nil, fmt.Errorf("malformed cursor: missing timestamp")
	}
	c.Timestamp = c.Timestamp.UTC()
	return &c, nil
}

// NextURL copies base and overwrites the cursor's parameter with its
// timestamp. An opaque cursor parameter from the current request is
// dropped so it cannot shadow the new bound.
func NextURL(base *url.URL, c *Cursor) string {
	next := *base
	q := base.Query()
	q.Del("cursor")
	q.Set(c.Param(), c.Value())
	next.RawQuery = q.Encode()
	return next.String()
}
