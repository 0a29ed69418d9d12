package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/agexparts/freight-service/internal/domain"
)

// FileQuoteCache keeps entries in one JSON file keyed by cache key. Writes
// go through a temp file and rename so readers never see a partial file.
// Concurrent processes sharing the file get last-writer-wins.
type FileQuoteCache struct {
	path string
	mu   sync.Mutex
}

// NewFileQuoteCache creates a cache backed by path
func NewFileQuoteCache(path string) *FileQuoteCache {
	return &FileQuoteCache{path: path}
}

func (c *FileQuoteCache) Get(_ context.Context, key string) (*domain.CachedQuote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read()
	if err != nil {
		return nil, err
	}
	entry, ok := entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (c *FileQuoteCache) Put(_ context.Context, key string, entry domain.CachedQuote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A corrupt file is replaced rather than blocking new writes
	entries, err := c.read()
	if err != nil {
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]domain.CachedQuote)
	}
	entries[key] = entry

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode quote cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create quote cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write quote cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write quote cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace quote cache: %w", err)
	}
	return nil
}

func (c *FileQuoteCache) read() (map[string]domain.CachedQuote, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote cache: %w", err)
	}

	var entries map[string]domain.CachedQuote
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("malformed quote cache %s: %w", c.path, err)
	}
	return entries, nil
}
