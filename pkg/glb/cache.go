package glb

import (
	"sync"

	"github.com/Urbanninja1/2DHD-sub001/pkg/geo"
)

// Cache memoizes ReadBounds results, errors included, for the lifetime of
// one pipeline run.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	read    func(string) (geo.Bounds, error)
}

type cacheEntry struct {
	bounds geo.Bounds
	err    error
}

// NewCache returns an empty cache backed by ReadBounds.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry), read: ReadBounds}
}

// ReadBounds returns the bounds for path, reading the file at most once.
func (c *Cache) ReadBounds(path string) (geo.Bounds, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok {
		return e.bounds, e.err
	}
	b, err := c.read(path)
	c.entries[path] = cacheEntry{bounds: b, err: err}
	return b, err
}
