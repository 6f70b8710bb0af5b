// Package cache memoizes successful resolutions. Bounded LRU with lazy
// per-entry expiry: stale entries are dropped on read, the size bound
// keeps the map from growing without limit
package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"equilex/internal/services/resolve/domain"
)

// DefaultSize bounds the cache when the caller passes 0
const DefaultSize = 4096

type entry struct {
	vals      []domain.Value
	expiresAt time.Time
}

// Cache implements domain.CachePort over a concurrency-safe LRU
type Cache struct {
	lru *lru.Cache[string, entry]
	now func() time.Time
}

// New returns a Cache bounded to size entries
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, now: time.Now}, nil
}

func key(category, query, scopeFP string) string {
	return fmt.Sprintf("%s|%s|%s", category, query, scopeFP)
}

// Get returns the cached values when present and unexpired. Expired
// entries are evicted on the spot
func (c *Cache) Get(category, query, scopeFP string) ([]domain.Value, bool) {
	k := key(category, query, scopeFP)
	e, ok := c.lru.Get(k)
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(k)
		return nil, false
	}
	return e.vals, true
}

// Put stores vals with expiry now+ttl. A non-positive ttl stores nothing
func (c *Cache) Put(category, query, scopeFP string, vals []domain.Value, ttl time.Duration) {
	if ttl <= 0 || len(vals) == 0 {
		return
	}
	c.lru.Add(key(category, query, scopeFP), entry{vals: vals, expiresAt: c.now().Add(ttl)})
}

// Len reports the current entry count
func (c *Cache) Len() int { return c.lru.Len() }
