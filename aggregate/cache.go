package aggregate

import (
	"slices"
	"sync"
	"time"

	"github.com/sig-0/remesas/storage/types"
)

type cacheEntry struct {
	expiresAt time.Time
	rates     []*types.ExchangeRate
}

// Cache is an in-memory TTL cache of source readings
type Cache struct {
	now     func() time.Time
	entries map[string]cacheEntry

	mu sync.RWMutex
}

// NewCache creates a new empty cache
func NewCache() *Cache {
	return &Cache{
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached readings for the key, if present and not expired
func (c *Cache) Get(key string) ([]*types.ExchangeRate, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()

		// Re-check, the entry could have been refreshed in the meantime
		if current, exists := c.entries[key]; exists && !c.now().Before(current.expiresAt) {
			delete(c.entries, key)
		}

		c.mu.Unlock()

		return nil, false
	}

	return slices.Clone(entry.rates), true
}

// Set caches the readings under the key for the given TTL,
// dropping any expired entries. Non-positive TTLs are ignored
func (c *Cache) Set(key string, rates []*types.ExchangeRate, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.purge()

	c.entries[key] = cacheEntry{
		expiresAt: c.now().Add(ttl),
		rates:     slices.Clone(rates),
	}
}

// purge drops all expired entries. The caller holds the lock
func (c *Cache) purge() {
	now := c.now()

	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// len returns the number of entries, expired ones included
func (c *Cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
