package batch

import (
	"context"
	"sync"

	"github.com/spigell/adaptive-interviewer/internal/interview"
)

// Source loads a batch context by id.
type Source interface {
	Load(ctx context.Context, id string) (*interview.Context, error)
}

// Cache keeps loaded batch contexts. Contexts are shared between candidates
// and must be treated as read-only.
type Cache struct {
	source Source

	mu      sync.RWMutex
	entries map[string]*interview.Context
}

func NewCache(source Source) *Cache {
	return &Cache{source: source, entries: make(map[string]*interview.Context)}
}

// Get returns the cached context, loading it on first use. Failed loads are
// not cached.
func (c *Cache) Get(ctx context.Context, id string) (*interview.Context, error) {
	c.mu.RLock()
	if ictx, ok := c.entries[id]; ok {
		c.mu.RUnlock()
		return ictx, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if ictx, ok := c.entries[id]; ok {
		return ictx, nil
	}

	ictx, err := c.source.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.entries[id] = ictx

	return ictx, nil
}

// Invalidate drops a cached context so the next Get reloads it.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}
