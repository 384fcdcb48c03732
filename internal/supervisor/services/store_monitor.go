// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package services

import (
	"context"
	"time"

	"github.com/tomtom215/tracepoint/internal/logging"
	"github.com/tomtom215/tracepoint/internal/metrics"
)

// Pinger is a store that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitoredStore names a store for logs and the store_up metric.
type MonitoredStore struct {
	Name  string
	Store Pinger
}

// StoreMonitorService pings every store on an interval, publishes
// store_up and app_uptime_seconds, and logs up/down transitions.
type StoreMonitorService struct {
	stores   []MonitoredStore
	interval time.Duration
	timeout  time.Duration
	started  time.Time

	// up holds the last observed state per store name.
	up map[string]bool
}

// NewStoreMonitorService creates the monitor. A non-positive interval means 30s.
func NewStoreMonitorService(interval time.Duration, started time.Time, stores ...MonitoredStore) *StoreMonitorService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StoreMonitorService{
		stores:   stores,
		interval: interval,
		timeout:  interval / 2,
		started:  started,
		up:       make(map[string]bool, len(stores)),
	}
}

// Serve implements suture.Service. It checks once immediately.
func (s *StoreMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.checkAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.checkAll(ctx)
		}
	}
}

func (s *StoreMonitorService) checkAll(ctx context.Context) {
	metrics.StartUptime(s.started)
	for _, st := range s.stores {
		s.check(ctx, st)
	}
}

func (s *StoreMonitorService) check(ctx context.Context, st MonitoredStore) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := st.Store.Ping(pingCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	up := err == nil
	metrics.RecordStoreUp(st.Name, up)

	prev, seen := s.up[st.Name]
	s.up[st.Name] = up
	switch {
	case !up && (!seen || prev):
		logging.Warn().Err(err).Str("store", st.Name).Msg("Store ping failed")
	case up && seen && !prev:
		logging.Info().Str("store", st.Name).Msg("Store reachable again")
	}
}

// String names the service in supervisor events.
func (s *StoreMonitorService) String() string {
	return "store-monitor"
}
