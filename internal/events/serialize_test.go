// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package events

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tracepoint/internal/metrics"
	"github.com/tomtom215/tracepoint/internal/models"
)

func TestSerializer(t *testing.T) {
	t.Parallel()

	ts := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.EventRow{
		{UUID: "u1", Event: "$autocapture", DistinctID: "known", Timestamp: ts,
			Properties: `{"plan":"pro","n":2}`, ElementsChain: `button.cta:text="Buy"`},
		{UUID: "u2", Event: "$pageview", DistinctID: "anon", Timestamp: ts, Properties: `not json`},
	}
	person := &models.Person{ID: 5, DistinctIDs: []string{"known"}}

	got, err := NewSerializer(fakeResolver{"known": person}).Serialize(context.Background(), 1, rows)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}

	e := got[0]
	if e.ID != "u1" || e.Person != person || e.Properties["plan"] != "pro" {
		t.Errorf("first event = %+v", e)
	}
	if len(e.Elements) != 1 || e.Elements[0].TagName != "button" || e.Elements[0].Text != "Buy" {
		t.Errorf("elements = %+v", e.Elements)
	}

	if got[1].Person != nil {
		t.Errorf("anonymous event person = %+v, want nil", got[1].Person)
	}
	if got[1].Properties == nil || len(got[1].Properties) != 0 {
		t.Errorf("unparseable properties = %v, want empty object", got[1].Properties)
	}
	if got[1].Elements == nil {
		t.Error("elements should be an empty list, not null")
	}
}

func TestSerializer_PersonLookupFailure(t *testing.T) {
	t.Parallel()

	rows := []models.EventRow{
		{UUID: "u1", Event: "signup", DistinctID: "known", Timestamp: time.Now(), Properties: `{"plan":"pro"}`},
	}
	degraded := metrics.PersonResolutionDegraded.WithLabelValues(surfaceEvents)
	before := testutil.ToFloat64(degraded)

	got, err := NewSerializer(failingResolver{}).Serialize(context.Background(), 1, rows)
	if err != nil {
		t.Fatalf("Serialize with failing resolver: %v", err)
	}
	if len(got) != 1 || got[0].Person != nil || got[0].Properties["plan"] != "pro" {
		t.Errorf("events = %+v, want the row without person", got)
	}
	if after := testutil.ToFloat64(degraded); after < before+1 {
		t.Errorf("degraded counter = %v, want at least %v", after, before+1)
	}
}

func TestSerializeRow_PartialPropertiesDiscarded(t *testing.T) {
	t.Parallel()

	row := &models.EventRow{UUID: "u1", Properties: `{"plan":"pro","n":}`}
	if got := SerializeRow(row, nil); len(got.Properties) != 0 {
		t.Errorf("properties = %v, want empty object", got.Properties)
	}
}
