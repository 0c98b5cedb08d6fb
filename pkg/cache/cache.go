// Package cache implements the in-memory TTL caches backing the API client
// and the fused snapshot views.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a mutex-guarded key/value store with a single TTL per instance.
// An entry is visible iff now - storedAt < ttl; expired entries are logically
// absent even before the sweeper physically removes them.
type Cache struct {
	name    string
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]entry
	nowFn   func() time.Time
}

type entry struct {
	value    interface{}
	storedAt time.Time
}

// New creates a cache. The name labels the hit/miss metrics for this instance.
func New(name string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Cache{
		name:    name,
		ttl:     ttl,
		entries: make(map[string]entry),
		nowFn:   time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (c *Cache) SetNowFunc(now func() time.Time) {
	if now == nil {
		return
	}

	c.mu.Lock()
	c.nowFn = now
	c.mu.Unlock()
}

// Set stores value under key, unconditionally overwriting any existing entry.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, storedAt: c.nowFn()}
}

// Get returns the value for key if present and unexpired. An expired entry is
// evicted immediately and reported as a miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		cacheMisses.WithLabelValues(c.name).Inc()
		return nil, false
	}

	if c.nowFn().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		cacheEvictions.WithLabelValues(c.name).Inc()
		cacheMisses.WithLabelValues(c.name).Inc()

		return nil, false
	}

	cacheHits.WithLabelValues(c.name).Inc()

	return e.value, true
}

// Has reports whether key holds an unexpired entry, without touching the
// hit/miss counters.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}

	return c.nowFn().Sub(e.storedAt) < c.ttl
}

// Clear drops all entries. Used by admin refresh and test harnesses only.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Delete removes a single entry regardless of expiry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Sweep removes every currently-expired entry and returns how many it removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFn()
	removed := 0

	for key, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 {
		cacheEvictions.WithLabelValues(c.name).Add(float64(removed))
	}

	return removed
}

// Len returns the number of physically present entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// StartSweeper sweeps the cache on a fixed period until ctx is canceled.
// This bounds memory growth from keys that are written but never re-read.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}
