// Package cache is a small in-process read-through cache with per-entry
// TTLs. Computations behind it are idempotent, so two goroutines racing
// on a cold key may both recompute; the second write simply wins.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Common TTLs for dashboard data.
const (
	TTLLive     = 5 * time.Second
	TTLSummary  = 30 * time.Second
	TTLListings = 5 * time.Minute
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Stats counts cache traffic since construction or the last Clear.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Counter is the increment-only side of a metrics counter. Satisfied by
// prometheus.Counter.
type Counter interface {
	Inc()
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	onHit   Counter
	onMiss  Counter
	hits    atomic.Int64
	misses  atomic.Int64
	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Observe attaches counters that mirror the internal hit and miss
// counts, typically the exported metrics. Unlike Stats, attached
// counters are monotonic and survive Clear.
func (c *Cache) Observe(hits, misses Counter) {
	c.mu.Lock()
	c.onHit = hits
	c.onMiss = misses
	c.mu.Unlock()
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	onHit, onMiss := c.onHit, c.onMiss
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		c.misses.Add(1)
		if onMiss != nil {
			onMiss.Inc()
		}
		return nil, false
	}
	c.hits.Add(1)
	if onHit != nil {
		onHit.Inc()
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. compute errors are not cached.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// Clear discards every entry. There is no per-key invalidation; entries
// otherwise expire by TTL only.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns a snapshot of traffic counters. Expired entries still
// count toward Entries until overwritten or cleared.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: n,
	}
}
