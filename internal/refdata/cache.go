package refdata

import (
	"context"
	"path"
	"sync"

	"github.com/tidemark/tidemark/pkg/scoretable"
)

// Cache is a thread-safe LRU cache in front of a table source. A stage
// loads each table once, but a project reuses the same files across stages
// and runs.
type Cache struct {
	src scoretable.Source

	mu      sync.Mutex
	maxSize int
	entries map[string][]byte
	order   []string // oldest first
}

// NewCache creates a cache with the given maximum number of tables.
// If maxSize <= 0, it defaults to 20.
func NewCache(src scoretable.Source, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &Cache{
		src:     src,
		maxSize: maxSize,
		entries: make(map[string][]byte),
	}
}

// ReadTable returns the cached table or reads it through. Failures are not
// cached.
func (c *Cache) ReadTable(ctx context.Context, name string) ([]byte, error) {
	if data, ok := c.get(name); ok {
		return data, nil
	}
	data, err := c.src.ReadTable(ctx, name)
	if err != nil {
		return nil, err
	}
	c.put(name, data)
	return data, nil
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close closes the underlying source.
func (c *Cache) Close() error {
	return Close(c.src)
}

func (c *Cache) get(name string) ([]byte, bool) {
	name = path.Clean(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.entries[name]
	if !ok {
		return nil, false
	}

	// Move to end (most recently used)
	c.moveToEnd(name)
	return data, true
}

func (c *Cache) put(name string, data []byte) {
	name = path.Clean(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[name]; ok {
		c.entries[name] = data
		c.moveToEnd(name)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[name] = data
	c.order = append(c.order, name)
}

func (c *Cache) moveToEnd(name string) {
	for i, k := range c.order {
		if k == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, name)
			return
		}
	}
}
