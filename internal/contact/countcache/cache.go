// Package countcache keeps the last known number of stored contacts so that
// admission does not have to count the table on every registration.
package countcache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long a refreshed count is trusted.
const DefaultTTL = 60 * time.Second

// Source returns the authoritative record count.
type Source interface {
	Count(ctx context.Context) (int, error)
}

// Observer receives cache events. Implementations must be safe for
// concurrent use.
type Observer interface {
	CacheHit()
	RefreshSucceeded(count int)
	RefreshFailed()
}

type noopObserver struct{}

func (noopObserver) CacheHit()            {}
func (noopObserver) RefreshSucceeded(int) {}
func (noopObserver) RefreshFailed()       {}

// Snapshot is a point-in-time copy of the cache state.
type Snapshot struct {
	Count         int
	LastRefreshed time.Time
	// Refreshed reports whether any refresh has ever succeeded.
	Refreshed bool
	// Reserved is the number of strict-mode slots held by in-flight inserts.
	Reserved int
}

// Cache holds the last known count and the time it was read.
//
// The mutex guards field access only. It is never held across a call to the
// Source, so concurrent refreshes are not de-duplicated and the last one to
// finish wins.
type Cache struct {
	source   Source
	ttl      time.Duration
	observer Observer

	mu            sync.Mutex
	count         int
	lastRefreshed time.Time
	refreshed     bool
	reserved      int
	// confirmed counts Increment and Commit calls. With conservative set, a
	// refresh adds the ones that landed while its read was in flight.
	confirmed    uint64
	conservative bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithObserver reports hits and refresh outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithConservativeRefresh makes a refresh add the inserts confirmed while its
// read was in flight on top of the value read. The count then never falls
// below the true number of records, at the price of counting an insert twice
// when the read already saw it. Strict admission uses this; without it a
// successful refresh overwrites the count with exactly what the source said.
func WithConservativeRefresh() Option {
	return func(c *Cache) {
		c.conservative = true
	}
}

// New creates a cache over source. A non-positive ttl falls back to DefaultTTL.
func New(source Source, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		source:   source,
		ttl:      ttl,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// GetCount returns the cached count while it is fresh and refreshes it from
// the source otherwise. When the refresh fails the previous count is returned
// together with the error so callers can still decide on it.
func (c *Cache) GetCount(ctx context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	if c.freshLocked(now) {
		n := c.count
		c.mu.Unlock()
		c.observer.CacheHit()
		return n, nil
	}
	c.mu.Unlock()

	return c.refresh(ctx, now)
}

// ForceRefresh reads the source regardless of the TTL. Failure semantics
// match GetCount.
func (c *Cache) ForceRefresh(ctx context.Context, now time.Time) (int, error) {
	return c.refresh(ctx, now)
}

// Increment records one successful insert. It does not extend freshness.
func (c *Cache) Increment() {
	c.mu.Lock()
	c.count++
	c.confirmed++
	c.mu.Unlock()
}

// Reserve refreshes the count when stale and then, under the lock, claims a
// slot if count plus outstanding reservations is below maxRecords. It returns
// the effective count the decision was made on. A refresh error is returned
// alongside the decision; the stale count is still used.
func (c *Cache) Reserve(ctx context.Context, now time.Time, maxRecords int) (int, bool, error) {
	_, refreshErr := c.GetCount(ctx, now)

	c.mu.Lock()
	defer c.mu.Unlock()

	effective := c.count + c.reserved
	if effective >= maxRecords {
		return effective, false, refreshErr
	}
	c.reserved++
	return effective, true, refreshErr
}

// Commit turns a reservation into a counted record.
func (c *Cache) Commit() {
	c.mu.Lock()
	if c.reserved > 0 {
		c.reserved--
	}
	c.count++
	c.confirmed++
	c.mu.Unlock()
}

// Release gives back a reservation whose insert did not happen.
func (c *Cache) Release() {
	c.mu.Lock()
	if c.reserved > 0 {
		c.reserved--
	}
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Count:         c.count,
		LastRefreshed: c.lastRefreshed,
		Refreshed:     c.refreshed,
		Reserved:      c.reserved,
	}
}

func (c *Cache) freshLocked(now time.Time) bool {
	return !c.lastRefreshed.IsZero() && now.Sub(c.lastRefreshed) < c.ttl
}

// refresh reads the source without holding the lock and overwrites the count
// with the result. Inserts confirmed while the read was in flight may or may
// not be included in it; see WithConservativeRefresh.
func (c *Cache) refresh(ctx context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	gen := c.confirmed
	c.mu.Unlock()

	n, err := c.source.Count(ctx)
	if err != nil {
		c.mu.Lock()
		stale := c.count
		c.mu.Unlock()
		c.observer.RefreshFailed()
		return stale, fmt.Errorf("refresh record count: %w", err)
	}

	c.mu.Lock()
	if c.conservative {
		n += int(c.confirmed - gen)
	}
	c.count = n
	c.lastRefreshed = now
	c.refreshed = true
	c.mu.Unlock()
	c.observer.RefreshSucceeded(n)
	return n, nil
}
