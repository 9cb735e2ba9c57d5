package source

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ResponseCache is a persisted key->response mapping used by the
// market-data adapter to avoid repeat network calls across process
// runs. Entries never expire: once a response is cached it is reused
// unconditionally, trading freshness for reduced API usage. The cache
// is unbounded; no eviction.
type ResponseCache struct {
	mu      sync.Mutex
	path    string
	entries map[string]Result
}

// CacheKey builds the cache key for a query: "{FUNCTION}_{SYMBOL}".
func CacheKey(function, symbol string) string {
	return fmt.Sprintf("%s_%s", function, symbol)
}

// NewResponseCache loads the cache file at path, starting empty when
// the file is missing or unreadable.
func NewResponseCache(path string) *ResponseCache {
	c := &ResponseCache{
		path:    path,
		entries: make(map[string]Result),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	// A corrupt cache file is discarded, not fatal
	_ = json.Unmarshal(data, &c.entries)
	if c.entries == nil {
		c.entries = make(map[string]Result)
	}

	return c
}

// Get returns the cached response for key, if present.
func (c *ResponseCache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.entries[key]
	return res, ok
}

// Put stores a response under key, overwriting any prior entry, and
// persists the whole mapping to disk.
func (c *ResponseCache) Put(key string, res Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = res

	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
