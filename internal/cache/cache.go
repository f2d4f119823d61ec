// Package cache provides a small in-memory TTL cache for rendered replies.
// Contest listings change slowly, so repeated group commands within the TTL
// are answered without touching the upstream APIs.
package cache

import (
	"sync"
	"time"
)

// Suggested TTLs per reply kind.
const (
	TTLContests = time.Minute      // contest listings
	TTLRank     = 10 * time.Minute // weekly leaderboard
	TTLProblems = 10 * time.Minute // recently updated problems
)

type entry struct {
	text      string
	expiresAt time.Time
}

// Cache is a thread-safe reply cache. A disabled cache is a no-op.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	enabled bool
}

// New creates a cache. Pass enabled=false for a no-op cache.
func New(enabled bool) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		enabled: enabled,
	}
	if enabled {
		go c.evictLoop()
	}
	return c
}

// Get returns the cached reply text for a key, if still fresh.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.text, true
}

// Set stores a reply with a TTL.
func (c *Cache) Set(key, text string, ttl time.Duration) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{text: text, expiresAt: time.Now().Add(ttl)}
}

// evictLoop drops expired entries so the map does not grow unbounded.
func (c *Cache) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.mu.Unlock()
	}
}
