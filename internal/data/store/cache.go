package store

import (
	"sync"
	"time"
)

// cacheTTL bounds how long an API response may serve reads before a refetch.
const cacheTTL = 5 * time.Minute

type cacheEntry struct {
	data      map[string]interface{}
	timestamp time.Time
}

// ResponseCache holds the most recent API response per endpoint key with a
// fixed time-to-live. Expired entries are dropped on read.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewResponseCache() *ResponseCache {
	return &ResponseCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached response for key if it is still fresh.
func (c *ResponseCache) Get(key string) (map[string]interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.timestamp) > cacheTTL {
		delete(c.entries, key)
		return nil, false
	}
	return entry.data, true
}

// Set stores a response for key, stamped now.
func (c *ResponseCache) Set(key string, data map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, timestamp: time.Now()}
}

// Clear drops all cached responses.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
