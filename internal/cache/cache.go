// Package cache provides a generic in-memory TTL cache.
package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
	storedAt  time.Time
}

func (i item[V]) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// Cache is a concurrency-safe map with per-entry expiry.
//
// Expired entries stay readable through GetStale until the janitor removes
// them, which only happens when the cache was built with a retention window.
type Cache[K comparable, V any] struct {
	mu        sync.RWMutex
	items     map[K]item[V]
	retention time.Duration
	now       func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	retention time.Duration
	now       func() time.Time
}

// WithRetention keeps expired entries for d after expiry so stale reads remain possible.
// Zero keeps them until overwritten.
func WithRetention(d time.Duration) Option {
	return func(o *options) { o.retention = d }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache. A janitor runs every cleanupInterval when it is positive.
func New[K comparable, V any](cleanupInterval time.Duration, opts ...Option) *Cache[K, V] {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	c := &Cache[K, V]{
		items:     make(map[K]item[V]),
		retention: o.retention,
		now:       o.now,
		stop:      make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

// Get returns a live entry.
func (c *Cache[K, V]) Get(_ context.Context, key K) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || it.expired(c.now()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// GetStale returns an entry even when expired. fresh is false for expired entries.
func (c *Cache[K, V]) GetStale(_ context.Context, key K) (value V, fresh bool, found bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false, false
	}
	return it.value, !it.expired(c.now()), true
}

// StoredAt returns when key was last written.
func (c *Cache[K, V]) StoredAt(key K) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[key]
	return it.storedAt, ok
}

// Set stores value for ttl. ttl <= 0 never expires.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	now := c.now()
	it := item[V]{value: value, storedAt: now}
	if ttl > 0 {
		it.expiresAt = now.Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = it
	c.mu.Unlock()
}

// Delete removes key.
func (c *Cache[K, V]) Delete(_ context.Context, key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len counts entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge removes entries past expiry plus retention.
func (c *Cache[K, V]) Purge() int {
	if c.retention <= 0 {
		return 0
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, it := range c.items {
		if it.expiresAt.IsZero() {
			continue
		}
		if now.After(it.expiresAt.Add(c.retention)) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Close stops the janitor.
func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[K, V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
