package activity

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long an activity page may be served from memory.
const DefaultCacheTTL = 5 * time.Minute

// cacheEntry is valid iff now - timestamp < ttl.
type cacheEntry struct {
	data      *Response
	timestamp time.Time
	ttl       time.Duration
}

// ResponseCache is a TTL-bound cache of activity pages keyed by the canonical
// filter serialization. Reads never return a stale entry; stale entries are
// swept opportunistically on every write rather than on a timer, so an
// expired entry may linger in memory until the next write (or a Sweep call)
// evicts it.
type ResponseCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewResponseCache constructs a cache with the provided TTL, defaulting to 5 minutes.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResponseCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ResponseCache) valid(entry cacheEntry) bool {
	return c.now().Sub(entry.timestamp) < entry.ttl
}

// Get returns the cached page for key when present and within TTL.
func (c *ResponseCache) Get(key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || !c.valid(entry) {
		return nil, false
	}
	return entry.data, true
}

// Put stores data under key, replacing any previous entry, then sweeps every
// other entry whose TTL has elapsed (piggy-backed cleanup).
func (c *ResponseCache) Put(key string, data *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{data: data, timestamp: c.now(), ttl: c.ttl}

	for k, entry := range c.entries {
		if !c.valid(entry) {
			delete(c.entries, k)
		}
	}
}

// Sweep removes every expired entry. Used by the optional scheduled sweep;
// correctness never depends on it since Get re-validates TTL on every read.
func (c *ResponseCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, entry := range c.entries {
		if !c.valid(entry) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of resident entries, valid or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
