package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Metadata cache keys. Only these endpoints are memoized.
const (
	CacheKeyPrimaryRoles   = "primary-roles"
	CacheKeySecondaryRoles = "secondary-roles"
	CacheKeyLeaveTypes     = "leave-types"
)

// DefaultMetadataTTL is how long cached metadata stays fresh.
const DefaultMetadataTTL = 5 * time.Minute

// MetadataCache memoizes slow-changing metadata with a TTL and coalesces
// concurrent fetches of the same key into a single call.
// It is safe for concurrent use. Each Client owns its own cache unless one
// is injected with WithMetadataCache.
type MetadataCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry

	group singleflight.Group
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// NewMetadataCache creates a cache with the given TTL using the wall clock.
func NewMetadataCache(ttl time.Duration) *MetadataCache {
	return NewMetadataCacheWithClock(ttl, time.Now)
}

// NewMetadataCacheWithClock creates a cache whose freshness is judged by now.
func NewMetadataCacheWithClock(ttl time.Duration, now func() time.Time) *MetadataCache {
	if now == nil {
		now = time.Now
	}
	return &MetadataCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key if fresh. Otherwise it calls fetch,
// sharing a single in-flight call among all concurrent callers of the same
// key. Errors are returned to every waiting caller and are not cached.
//
// The shared call does not inherit ctx cancellation, so one caller giving up
// does not fail the others; each caller stops waiting when its own ctx ends.
func (c *MetadataCache) Get(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	fctx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A flight that finished just before this one may have stored a value.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{value: v, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Invalidate drops a single key.
func (c *MetadataCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every cached entry.
func (c *MetadataCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *MetadataCache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}
