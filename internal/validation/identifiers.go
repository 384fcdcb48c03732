// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeEventUUID accepts 32 hex digits with optional dashes anywhere,
// optional braces and an optional urn:uuid: prefix, and returns the
// canonical lowercase hyphenated form.
func NormalizeEventUUID(s string) (string, bool) {
	h := strings.TrimSpace(strings.ToLower(s))
	h = strings.TrimPrefix(h, "urn:")
	h = strings.TrimPrefix(h, "uuid:")
	h = strings.TrimPrefix(h, "{")
	h = strings.TrimSuffix(h, "}")
	h = strings.ReplaceAll(h, "-", "")
	if len(h) != 32 {
		return "", false
	}
	for _, c := range h {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", false
		}
	}
	id, err := uuid.Parse(h)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// IsEventUUID reports whether s is an acceptable event identifier.
func IsEventUUID(s string) bool {
	_, ok := NormalizeEventUUID(s)
	return ok
}

// timestampLayouts are tried in order; zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses the ISO 8601 variants clients send for after,
// before, date_from and date_to. The result is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
