// Package cache provides a generic LRU cache with TTL expiration
package cache

import (
	"time"

	"github.com/bluele/gcache"
)

// Cache is a thread-safe, size-bounded cache whose entries expire after a TTL
type Cache[T any] struct {
	store gcache.Cache
}

// New creates a cache holding at most size entries for ttl each
func New[T any](size int, ttl time.Duration) *Cache[T] {
	if size <= 0 {
		size = 128
	}
	return &Cache[T]{
		store: gcache.New(size).LRU().Expiration(ttl).Build(),
	}
}

// Get retrieves a value, returning (value, true) if found and not expired
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	v, err := c.store.Get(key)
	if err != nil {
		return zero, false
	}
	value, ok := v.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

// Set stores a value with the cache's TTL
func (c *Cache[T]) Set(key string, value T) {
	_ = c.store.Set(key, value)
}

// Delete removes a key from the cache
func (c *Cache[T]) Delete(key string) {
	c.store.Remove(key)
}

// Clear removes all items from the cache
func (c *Cache[T]) Clear() {
	c.store.Purge()
}

// Size returns the number of unexpired items
func (c *Cache[T]) Size() int {
	return c.store.Len(true)
}
