package Sync

import (
	"strings"
	"sync"
)

// Cache is a small in-memory store for query results, keyed by strings that
// start with a per-collection tag. Invalidating a tag drops every entry
// belonging to that logical collection.
type Cache struct {
	mu      sync.Mutex
	entries map[string]interface{}
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]interface{})}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Invalidate removes every entry whose key starts with tag.
func (c *Cache) Invalidate(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, tag) {
			delete(c.entries, key)
		}
	}
}
