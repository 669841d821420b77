package dictionary

import "sync"

// entryCache is a bounded in-memory cache. When full, the oldest entry is
// evicted first.
type entryCache struct {
	mu      sync.Mutex
	max     int
	entries map[string]*Entry
	order   []string
}

func newEntryCache(max int) *entryCache {
	if max <= 0 {
		max = 256
	}
	return &entryCache{
		max:     max,
		entries: make(map[string]*Entry, max),
	}
}

func (c *entryCache) get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *entryCache) put(key string, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = entry
	c.order = append(c.order, key)
}

func (c *entryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
