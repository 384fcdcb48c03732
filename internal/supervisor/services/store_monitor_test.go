// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tracepoint/internal/metrics"
)

type flakyStore struct {
	down  atomic.Bool
	pings atomic.Int32
}

func (s *flakyStore) Ping(context.Context) error {
	s.pings.Add(1)
	if s.down.Load() {
		return errors.New("store unavailable")
	}
	return nil
}

func TestStoreMonitorService_PublishesState(t *testing.T) {
	t.Parallel()

	healthy := &flakyStore{}
	broken := &flakyStore{}
	broken.down.Store(true)

	svc := NewStoreMonitorService(10*time.Millisecond, time.Now(),
		MonitoredStore{Name: "monitor_test_ok", Store: healthy},
		MonitoredStore{Name: "monitor_test_down", Store: broken},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Serve() = %v, want deadline exceeded", err)
	}

	if healthy.pings.Load() < 2 {
		t.Errorf("pings = %d, want repeated checks", healthy.pings.Load())
	}
	if got := testutil.ToFloat64(metrics.StoreUp.WithLabelValues("monitor_test_ok")); got != 1 {
		t.Errorf("store_up{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.StoreUp.WithLabelValues("monitor_test_down")); got != 0 {
		t.Errorf("store_up{down} = %v, want 0", got)
	}
}

func TestStoreMonitorService_TracksTransitions(t *testing.T) {
	t.Parallel()

	st := &flakyStore{}
	svc := NewStoreMonitorService(time.Minute, time.Now(), MonitoredStore{Name: "monitor_test_flaky", Store: st})
	ctx := context.Background()

	svc.checkAll(ctx)
	st.down.Store(true)
	svc.checkAll(ctx)
	if svc.up["monitor_test_flaky"] {
		t.Error("state not updated to down")
	}
	st.down.Store(false)
	svc.checkAll(ctx)
	if !svc.up["monitor_test_flaky"] {
		t.Error("state not updated to up")
	}
	if svc.String() != "store-monitor" {
		t.Errorf("String() = %q", svc.String())
	}
}
