package cache

import (
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/estrattori/eventi/internal/model"
)

// MemoryCache keeps JSON-serialized event lists in an in-process TTL store.
// Serialization hands every caller its own copy, so downstream metadata
// merges on returned events never write back into cached entries.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL and
// expired-entry cleanup interval
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the cached events for the text, if present
func (c *MemoryCache) Get(text string) ([]model.Event, bool) {
	k := key(text)
	val, found := c.cache.Get(k)
	if !found {
		return nil, false
	}
	var events []model.Event
	if err := json.Unmarshal(val.([]byte), &events); err != nil {
		// Unreadable entry: drop it and report a miss
		c.cache.Delete(k)
		return nil, false
	}
	return events, true
}

// Set stores the events for the text with the given TTL
func (c *MemoryCache) Set(text string, events []model.Event, ttl time.Duration) error {
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}
	c.cache.Set(key(text), data, ttl)
	return nil
}

// Delete removes the entry for the text
func (c *MemoryCache) Delete(text string) {
	c.cache.Delete(key(text))
}

// Clear removes all entries
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}
