package cache

import (
	"sync"
	"time"
)

// Cache is a key/value memo with per-entry expiry. Lookups past the expiry
// behave like a miss. Safe for concurrent use.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	// Sweep removes expired entries and returns how many were dropped.
	Sweep() int
}

type entry struct {
	value  any
	expiry time.Time
}

// TTL is a concurrency-safe in-memory Cache backed by a mutex-guarded map.
type TTL struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is swappable so tests stay deterministic and time-independent.
	now func() time.Time
}

// NewTTL creates an empty TTL cache.
func NewTTL() *TTL {
	return &TTL{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the live value for key, or (nil, false) on a miss or an
// expired entry.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiry) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A ttl <= 0 stores nothing.
func (c *TTL) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiry: c.now().Add(ttl)}
}

// Sweep drops all expired entries.
func (c *TTL) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now()
	dropped := 0
	for k, e := range c.entries {
		if cutoff.After(e.expiry) {
			delete(c.entries, k)
			dropped++
		}
	}
	return dropped
}

// Noop is a Cache that never stores anything. Used in tests to keep
// selection deterministic.
type Noop struct{}

func (Noop) Get(string) (any, bool)         { return nil, false }
func (Noop) Set(string, any, time.Duration) {}
func (Noop) Sweep() int                     { return 0 }
