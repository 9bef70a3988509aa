package store

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds short-lived copies of rows keyed by entity and id. Every
// mutation path of a cached entity must call Invalidate before returning.
type Cache struct {
	lru *expirable.LRU[string, any]
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 1
	}
	return &Cache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

func cacheKey(entity, id string) string {
	return entity + ":" + id
}

func cacheGet[T any](c *Cache, entity, id string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.lru.Get(cacheKey(entity, id))
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func (c *Cache) Set(entity, id string, v any) {
	if c == nil {
		return
	}
	c.lru.Add(cacheKey(entity, id), v)
}

func (c *Cache) Invalidate(entity string, ids ...string) {
	if c == nil {
		return
	}
	for _, id := range ids {
		c.lru.Remove(cacheKey(entity, id))
	}
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
