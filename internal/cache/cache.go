// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package cache provides a small thread-safe TTL cache whose hit, miss,
// size and eviction counts are exported as Prometheus metrics.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tracepoint/internal/metrics"
)

const defaultCleanupInterval = 5 * time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is an in-memory cache with one expiry for every entry.
type TTL[V any] struct {
	name    string
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry[V]
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache reported under name in the cache_* metrics and
// starts its background cleanup. Call Close to stop it.
func New[V any](name string, ttl time.Duration) *TTL[V] {
	c := &TTL[V]{
		name:    name,
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go c.cleanupLoop(defaultCleanupInterval)
	return c
}

// Get returns the value for key if present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		size := len(c.entries)
		c.mu.Unlock()

		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
		return zero, false
	}
	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	size := len(c.entries)
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
}

// Len returns the number of stored entries, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues(c.name).Set(0)
}

// Close stops the background cleanup. The cache stays usable.
func (c *TTL[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *TTL[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries.
func (c *TTL[V]) cleanup() {
	now := c.now()
	c.mu.Lock()
	evicted := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(evicted))
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
}

// GenerateKey builds a compact key from a scope and JSON-serializable params.
func GenerateKey(scope string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", scope, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", scope, hash[:16])
}
