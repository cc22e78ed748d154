package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// EvictionObserver is notified when an entry is evicted by capacity or TTL.
// The cache.evicted counter named in the observability interface is wired
// through this callback rather than hardcoded into the cache, so callers
// decide how (or whether) to record it.
type EvictionObserver func(key string)

// Cache is a bounded, TTL-aware, single-flight store keyed by a string (the
// caller encodes a Fingerprint to a string before calling it). It is generic
// over the stored value so it has no dependency on the engine package,
// avoiding an import cycle between cache and engine.
type Cache[V any] struct {
	lru     *lru.LRU[string, V]
	flight  singleflight.Group
	onEvict EvictionObserver

	hits   atomic.Int64
	misses atomic.Int64
}

// New builds a Cache with the given capacity (<=0 means a large effectively
// unbounded default) and TTL (<=0 means entries never expire on their own).
func New[V any](capacity int, ttl time.Duration, onEvict EvictionObserver) *Cache[V] {
	if capacity <= 0 {
		capacity = 100_000
	}
	c := &Cache[V]{onEvict: onEvict}
	c.lru = lru.NewLRU[string, V](capacity, func(key string, _ V) {
		if c.onEvict != nil {
			c.onEvict(key)
		}
	}, ttl)
	return c
}

// Get returns the cached value for key and whether it was present.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Hits returns the number of Get/GetOrCompute calls served from cache since
// construction, for operational dashboards (spec §1 excludes dashboards
// themselves, not the counters a dashboard would read).
func (c *Cache[V]) Hits() int64 { return c.hits.Load() }

// Misses returns the number of Get/GetOrCompute calls that found no cached
// entry, whether or not the subsequent compute succeeded.
func (c *Cache[V]) Misses() int64 { return c.misses.Load() }

// Set inserts or overwrites the value for key.
func (c *Cache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Len returns the number of entries currently cached.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Remove evicts a single key, if present, and reports whether it was.
func (c *Cache[V]) Remove(key string) bool {
	return c.lru.Remove(key)
}

// Purge evicts every entry, invoking the eviction observer for each.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}

// GetOrCompute returns the cached value for key if present; otherwise it
// runs compute, with concurrent callers sharing the same key collapsed into
// a single execution (the spec's single-flight guarantee). GetOrCompute
// takes no context: every caller sharing a key waits until compute returns,
// and all of them receive its value or its error. Whatever context compute
// uses is the one that can cancel it. The returned bool
// reports whether the value came from cache rather than from a fresh
// compute, so callers don't need a separate Get call (which would double
// count Hits/Misses).
//
// compute's error is never cached: on error, the next call recomputes.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error, bool) {
	if v, ok := c.Get(key); ok {
		return v, nil, true
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		// A flight for key may have finished between the Get above and Do.
		if value, ok := c.lru.Peek(key); ok {
			return value, nil
		}
		value, err := compute()
		if err != nil {
			return value, err
		}
		c.Set(key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err, false
	}
	return v.(V), nil, false
}
