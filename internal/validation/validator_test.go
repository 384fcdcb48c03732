// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package validation

import (
	"strings"
	"testing"
	"time"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

type listRequest struct {
	After   string `validate:"omitempty,isotime"`
	EventID string `validate:"omitempty,eventuuid"`
	Props   string `validate:"omitempty,jsonarray_or_object"`
	Order   string `validate:"omitempty,oneof=timestamp -timestamp"`
	Limit   int    `validate:"min=1,max=1000"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     listRequest
		wantField string
		wantMsg   string
	}{
		{"valid", listRequest{After: "2021-01-01T00:00:00Z", EventID: "0178c0a1-1f4f-0000-ab6e-07e0c3a0d9e1", Props: "[]", Order: "-timestamp", Limit: 100}, "", ""},
		{"bad time", listRequest{After: "yesterday", Limit: 1}, "After", "After must be an ISO 8601 timestamp"},
		{"bad uuid", listRequest{EventID: "not-a-uuid", Limit: 1}, "EventID", "EventID must be a valid UUID"},
		{"bad props", listRequest{Props: "key=value", Limit: 1}, "Props", "Props must be a JSON list or object"},
		{"bad order", listRequest{Order: "event", Limit: 1}, "Order", "Order must be one of: timestamp -timestamp"},
		{"limit too big", listRequest{Limit: 5000}, "Limit", "Limit must be at most 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.wantField {
				t.Errorf("field = %q, want %q", fe.Field(), tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestNormalizeEventUUID(t *testing.T) {
	t.Parallel()

	const canonical = "0178c0a1-1f4f-0000-ab6e-07e0c3a0d9e1"
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{canonical, canonical, true},
		{"0178C0A11F4F0000AB6E07E0C3A0D9E1", canonical, true},
		{"{0178c0a1-1f4f-0000-ab6e-07e0c3a0d9e1}", canonical, true},
		{"urn:uuid:0178c0a1-1f4f-0000-ab6e-07e0c3a0d9e1", canonical, true},
		{"0178-c0a11f4f0000ab6e07e0c3a0d9e1", canonical, true},
		{"0178c0a1-1f4f-0000-ab6e-07e0c3a0d9e", "", false},
		{"0178c0a1-1f4f-0000-ab6e-07e0c3a0d9zz", "", false},
		{"", "", false},
		{"1", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeEventUUID(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NormalizeEventUUID(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2021, 3, 4, 5, 6, 7, 123456000, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2021-03-04T05:06:07.123456Z", want},
		{"2021-03-04T07:06:07.123456+02:00", want},
		{"2021-03-04T05:06:07.123456", want},
		{"2021-03-04 05:06:07.123456", want},
		{"2021-03-04", time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) || got.Location() != time.UTC {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseTimestamp("last tuesday"); err == nil {
		t.Error("expected error for free text")
	}
}
