// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event store (DuckDB)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Metastore (SQLite)
	MetastoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metastore_query_duration_seconds",
			Help:    "Duration of metastore queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"operation"},
	)

	// Event listing
	EventListQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_list_queries_total",
			Help: "Event listing queries by query shape and time window",
		},
		[]string{"shape", "window"}, // window: "narrow", "fallback", "explicit"
	)

	EventListRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "event_list_rows",
			Help:    "Rows returned per event listing page",
			Buckets: []float64{0, 1, 10, 50, 100, 250, 500, 1000},
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	PersonResolutionDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "person_resolution_degraded_total",
			Help: "Responses served with null persons after a person lookup failed",
		},
		[]string{"surface"}, // events, sessions, recording
	)

	// System
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	StoreUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_up",
			Help: "Whether the last ping of a store succeeded (1) or failed (0)",
		},
		[]string{"store"},
	)
)

// Window labels for EventListQueries.
const (
	WindowNarrow   = "narrow"
	WindowFallback = "fallback"
	WindowExplicit = "explicit"
)

// RecordDBQuery records an event store query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordMetastoreQuery records a metastore query duration.
func RecordMetastoreQuery(operation string, duration time.Duration) {
	MetastoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordEventListQuery counts one listing query and, when rows >= 0, the page size it produced.
func RecordEventListQuery(shape, window string, rows int) {
	EventListQueries.WithLabelValues(shape, window).Inc()
	if rows >= 0 {
		EventListRows.Observe(float64(rows))
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBreakerResult counts a call through a breaker. result is
// "success", "failure" or "rejected".
func RecordBreakerResult(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordBreakerTransition updates the state gauge and transition counter.
// States are the gobreaker names: "closed", "half-open", "open".
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

// RecordPersonResolutionDegraded counts a response served without persons.
func RecordPersonResolutionDegraded(surface string) {
	PersonResolutionDegraded.WithLabelValues(surface).Inc()
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// RecordStoreUp publishes the result of a store ping.
func RecordStoreUp(store string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	StoreUp.WithLabelValues(store).Set(v)
}

// StartUptime sets AppUptime relative to start.
func StartUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}
