package live

import (
	"sync"
	"time"
)

// Cache is a bounded in-memory TTL cache of upstream response bodies keyed by URL.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

// NewCache creates a cache holding at most capacity bodies for ttl each. A
// capacity of zero or less means unbounded.
func NewCache(ttl time.Duration, capacity int) *Cache {
	return &Cache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get retrieves a cached body if it exists and hasn't expired.
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[url]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.body, true
}

// Set stores a body, evicting expired entries and then the entry closest to
// expiry if the cache is full.
func (c *Cache) Set(url string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[url]; !ok && c.capacity > 0 && len(c.entries) >= c.capacity {
		c.cleanupLocked()
		if len(c.entries) >= c.capacity {
			c.evictOldestLocked()
		}
	}
	c.entries[url] = cacheEntry{
		body:      body,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete drops a body, used when it turns out not to decode.
func (c *Cache) Delete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}

// Len is the number of entries held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) cleanupLocked() {
	now := c.now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) evictOldestLocked() {
	var (
		oldest string
		at     time.Time
	)
	for k, v := range c.entries {
		if oldest == "" || v.expiresAt.Before(at) {
			oldest, at = k, v.expiresAt
		}
	}
	delete(c.entries, oldest)
}
