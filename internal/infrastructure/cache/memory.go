// Package cache holds the process-local quote cache backends and the
// instrumentation shared by every backend.
package cache

import (
	"context"
	"sync"

	"github.com/agexparts/freight-service/internal/domain"
)

// MemoryQuoteCache keeps entries in process memory
type MemoryQuoteCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CachedQuote
}

// NewMemoryQuoteCache creates an empty in-memory cache
func NewMemoryQuoteCache() *MemoryQuoteCache {
	return &MemoryQuoteCache{entries: make(map[string]domain.CachedQuote)}
}

func (c *MemoryQuoteCache) Get(_ context.Context, key string) (*domain.CachedQuote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (c *MemoryQuoteCache) Put(_ context.Context, key string, entry domain.CachedQuote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry
	return nil
}
