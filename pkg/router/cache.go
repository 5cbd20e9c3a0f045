package router

import (
	"sync"
	"time"
)

// AvailabilityCache is a thread-safe cache of probe results with bulk
// TTL invalidation: once the configured TTL elapses, the next access
// clears every entry at once and restarts the clock. Per-entry expiry
// would let a chain mix fresh and stale verdicts; invalidating in bulk
// keeps one coherent snapshot of the provider landscape.
type AvailabilityCache struct {
	mu      sync.Mutex
	entries map[string]bool
	stamp   time.Time
	ttl     time.Duration

	// now is replaceable for tests.
	now func() time.Time
}

// NewAvailabilityCache creates a cache with the given TTL. A zero or
// negative TTL gets the 1800s default.
func NewAvailabilityCache(ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 1800 * time.Second
	}
	return &AvailabilityCache{
		entries: make(map[string]bool),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached verdict for the key. The second return is
// false on a miss or after bulk invalidation.
func (c *AvailabilityCache) Get(key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()
	available, ok := c.entries[key]
	return available, ok
}

// Set records a probe verdict.
func (c *AvailabilityCache) Set(key string, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()
	if len(c.entries) == 0 {
		c.stamp = c.now()
	}
	c.entries[key] = available
}

// Invalidate clears the whole cache immediately.
func (c *AvailabilityCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]bool)
	c.stamp = time.Time{}
}

// Len returns the number of cached verdicts.
func (c *AvailabilityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()
	return len(c.entries)
}

func (c *AvailabilityCache) expireLocked() {
	if !c.stamp.IsZero() && c.now().Sub(c.stamp) >= c.ttl {
		c.entries = make(map[string]bool)
		c.stamp = time.Time{}
	}
}
