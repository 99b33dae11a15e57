package profile

import "sync"

// Cache memoises resolved profiles for the lifetime of the process. There is
// no eviction, size bound, or expiry: an entry, once populated, is treated as
// valid until shutdown. This deliberately trades freshness for lookup cost.
type Cache struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{profiles: make(map[string]Profile)}
}

// Get returns the cached profile for userID, if any.
func (c *Cache) Get(userID string) (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[userID]
	return p, ok
}

// Put stores a resolved profile.
func (c *Cache) Put(userID string, p Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[userID] = p
}

// Len returns the number of cached profiles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.profiles)
}
