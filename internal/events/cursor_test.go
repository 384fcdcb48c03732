// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"net/url"
	"testing"
	"time"
)

func TestCursorValueFormat(t *testing.T) {
	t.Parallel()

	ts := time.Date(2021, 6, 1, 8, 30, 15, 123456789, time.FixedZone("CEST", 2*3600))
	c := NewCursor(false, ts)
	if c.Direction != DirectionBefore {
		t.Errorf("direction = %s, want before", c.Direction)
	}
	if got, want := c.Value(), "2021-06-01T06:30:15.123456Z"; got != want {
		t.Errorf("Value() = %s, want %s", got, want)
	}
	if NewCursor(true, ts).Param() != "after" {
		t.Error("ascending cursor should set after")
	}
}

func TestCursorEncodeDecode(t *testing.T) {
	t.Parallel()

	in := NewCursor(true, time.Date(2021, 6, 1, 8, 30, 15, 123456000, time.UTC))
	out, err := DecodeCursor(in.Encode())
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if out.Direction != in.Direction || !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("decoded %+v, want %+v", out, in)
	}

	for _, bad := range []string{"", "!!", "e30", "eyJkIjoic2lkZXdheXMiLCJ0IjoiMjAyMS0wNi0wMVQwMDowMDowMFoifQ"} {
		if _, err := DecodeCursor(bad); err == nil {
			t.Errorf("DecodeCursor(%q) succeeded, want error", bad)
		}
	}
}

func TestNextURL(t *testing.T) {
	t.Parallel()

	c := &Cursor{Direction: DirectionBefore, Timestamp: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)}

	tests := []struct {
		name string
		base string
		want url.Values
	}{
		{
			name: "adds parameter",
			base: "http://api.test/api/v1/events?event=%24pageview",
			want: url.Values{"event": {"$pageview"}, "before": {"2021-06-01T00:00:00.000000Z"}},
		},
		{
			name: "overwrites existing bound",
			base: "http://api.test/api/v1/events?before=2021-07-01T00%3A00%3A00.000000Z&orderBy=-timestamp",
			want: url.Values{"orderBy": {"-timestamp"}, "before": {"2021-06-01T00:00:00.000000Z"}},
		},
		{
			name: "drops opaque cursor",
			base: "http://api.test/api/v1/events?cursor=abc",
			want: url.Values{"before": {"2021-06-01T00:00:00.000000Z"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			base, err := url.Parse(tt.base)
			if err != nil {
				t.Fatalf("url.Parse: %v", err)
			}
			next, err := url.Parse(NextURL(base, c))
			if err != nil {
				t.Fatalf("parse next: %v", err)
			}
			if next.Path != base.Path || next.Host != base.Host {
				t.Errorf("next = %s, want same path as %s", next, base)
			}
			got := next.Query()
			if len(got) != len(tt.want) {
				t.Errorf("query = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got.Get(k) != v[0] || len(got[k]) != 1 {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}
