// Package refcache implements the generic ReferenceCache abstraction that
// pkg/actioncache specializes: a bounded key-value cache over digests,
// grounded on the original server's actioncache/instance.py (which itself
// subclasses a ReferenceCache base class) and backed by
// hashicorp/golang-lru, matching the CAS memory backend's choice of
// library for the same concern.
package refcache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
)

// Cache is a bounded LRU keyed by an opaque string (pkg/actioncache keys
// on "hash_sizebytes", matching the original server's action-digest key).
type Cache struct {
	mu    sync.RWMutex
	cache *lru.Cache
}

// New returns a Cache holding at most maxEntries entries.
func New(maxEntries int) (*Cache, error) {
	c, err := lru.New(maxEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{cache: c}, nil
}

// Get returns the stored value for key, or bgerrors.NotFound.
//
// If validate is non-nil, it is invoked on the cached value before it is
// returned; a false result evicts the entry and the lookup reports a miss,
// while an error from validate is returned as-is and the entry is kept.
// This is the hook pkg/actioncache uses to confirm every
// digest an ActionResult references is still present in CAS before
// serving a cache hit (spec §4.3) — a stale reference is treated the
// same as never having been cached.
func (c *Cache) Get(ctx context.Context, key string, validate func(context.Context, interface{}) (bool, error)) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Peek(key)
	if !ok {
		return nil, bgerrors.NotFound("cache entry not found: " + key)
	}

	if validate != nil {
		valid, err := validate(ctx, v)
		if err != nil {
			return nil, err
		}
		if !valid {
			c.cache.Remove(key)
			return nil, bgerrors.NotFound("cache entry evicted: referenced blob missing from CAS: " + key)
		}
	}

	c.cache.Get(key) // bump recency now that the entry is confirmed live
	return v, nil
}

// Put stores value under key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *Cache) Put(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, value)
	return nil
}

// Delete removes key, if present.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(key)
	return nil
}
