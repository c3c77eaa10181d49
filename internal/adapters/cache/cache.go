package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a concurrency-safe map whose entries expire after ttl. A zero ttl never expires.
type Cache[K comparable, V any] struct {
	mu  sync.RWMutex
	m   map[K]item[V]
	ttl time.Duration
	now func() time.Time
}

func NewCache[K comparable, V any](size int, ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		m:   make(map[K]item[V], size),
		ttl: ttl,
		now: time.Now,
	}
}

func (c *Cache[K, V]) expired(it item[V], now time.Time) bool {
	return c.ttl > 0 && !now.Before(it.expiresAt)
}

func (c *Cache[K, V]) Get(_ context.Context, k K) (V, bool) {
	c.mu.RLock()
	it, ok := c.m[k]
	c.mu.RUnlock()

	if !ok || c.expired(it, c.now()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

func (c *Cache[K, V]) Set(_ context.Context, k K, v V) {
	c.mu.Lock()
	c.m[k] = item[V]{value: v, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache[K, V]) SetBatch(_ context.Context, items map[K]V) {
	c.mu.Lock()
	expiresAt := c.now().Add(c.ttl)
	for k, v := range items {
		c.m[k] = item[V]{value: v, expiresAt: expiresAt}
	}
	c.mu.Unlock()
}
