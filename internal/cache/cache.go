// Package cache provides a process-local TTL cache keyed by string.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long an entry stays fresh after Set.
const DefaultTTL = 60 * time.Second

// Entry is a cached value and the instant it goes stale.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// TTL maps keys to values that expire a fixed duration after being written.
// Stale entries are ignored on read and only removed by Sweep. There is no
// size bound: memory grows with the number of distinct keys seen within one
// sweep interval.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a TTL cache.
type Option[V any] func(*TTL[V])

// WithClock replaces time.Now, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *TTL[V]) {
		c.now = now
	}
}

// New creates a cache whose entries live for ttl. A non-positive ttl means DefaultTTL.
func New[V any](ttl time.Duration, opts ...Option[V]) *TTL[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &TTL[V]{
		entries: make(map[string]Entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if it exists and has not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !e.ExpiresAt.After(c.now()) {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Set stores v under key, replacing any previous entry, and returns the new expiry.
func (c *TTL[V]) Set(key string, v V) time.Time {
	expiresAt := c.now().Add(c.ttl)
	c.mu.Lock()
	c.entries[key] = Entry[V]{Value: v, ExpiresAt: expiresAt}
	c.mu.Unlock()
	return expiresAt
}

// Len returns the number of stored entries, stale ones included.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the configured time-to-live.
func (c *TTL[V]) TTL() time.Duration {
	return c.ttl
}

// Sweep deletes every expired entry and returns how many were removed.
func (c *TTL[V]) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !e.ExpiresAt.After(now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Run calls Sweep every interval until ctx is done. onSweep, if non-nil,
// receives the number of removed entries and the remaining size.
func (c *TTL[V]) Run(ctx context.Context, interval time.Duration, onSweep func(removed, remaining int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.Sweep()
			if onSweep != nil {
				onSweep(removed, c.Len())
			}
		}
	}
}
