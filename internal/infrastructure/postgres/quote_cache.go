// Package postgres stores cached quotes in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/agexparts/freight-service/internal/domain"
)

const createQuoteCacheTable = `
CREATE TABLE IF NOT EXISTS quote_cache (
    cache_key  TEXT PRIMARY KEY,
    cached_at  TIMESTAMPTZ NOT NULL,
    quote      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// QuoteCache is a PostgreSQL implementation of domain.QuoteCache
type QuoteCache struct {
	db *sql.DB
}

// NewQuoteCache opens dsn, pings it and ensures the table exists
func NewQuoteCache(ctx context.Context, dsn string) (*QuoteCache, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres db: %w", err)
	}
	if _, err := db.ExecContext(ctx, createQuoteCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create quote_cache table: %w", err)
	}
	return &QuoteCache{db: db}, nil
}

// Close closes the database connection
func (c *QuoteCache) Close() error {
	return c.db.Close()
}

// HealthCheck pings the database
func (c *QuoteCache) HealthCheck(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *QuoteCache) Get(ctx context.Context, key string) (*domain.CachedQuote, error) {
	var (
		cachedAt time.Time
		raw      []byte
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT cached_at, quote FROM quote_cache WHERE cache_key = $1`, key,
	).Scan(&cachedAt, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached quote: %w", err)
	}

	var quote domain.NormalizedQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("malformed cached quote %q: %w", key, err)
	}
	return &domain.CachedQuote{Timestamp: cachedAt, NormalizedQuote: quote}, nil
}

func (c *QuoteCache) Put(ctx context.Context, key string, entry domain.CachedQuote) error {
	raw, err := json.Marshal(entry.NormalizedQuote)
	if err != nil {
		return fmt.Errorf("failed to encode cached quote: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
        INSERT INTO quote_cache (cache_key, cached_at, quote, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (cache_key)
        DO UPDATE SET cached_at = EXCLUDED.cached_at, quote = EXCLUDED.quote, updated_at = now()`,
		key, entry.Timestamp.UTC(), raw,
	)
	if err != nil {
		return fmt.Errorf("failed to store cached quote: %w", err)
	}
	return nil
}
