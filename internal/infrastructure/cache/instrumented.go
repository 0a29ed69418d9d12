package cache

import (
	"context"

	"github.com/agexparts/freight-service/internal/domain"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/metrics"
)

// InstrumentedQuoteCache logs and counts every access to the wrapped backend
type InstrumentedQuoteCache struct {
	inner   domain.QuoteCache
	backend string
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewInstrumentedQuoteCache wraps inner. m may be nil.
func NewInstrumentedQuoteCache(inner domain.QuoteCache, backend string, logger *logging.Logger, m *metrics.Metrics) *InstrumentedQuoteCache {
	return &InstrumentedQuoteCache{
		inner:   inner,
		backend: backend,
		logger:  logger,
		metrics: m,
	}
}

func (c *InstrumentedQuoteCache) Get(ctx context.Context, key string) (*domain.CachedQuote, error) {
	entry, err := c.inner.Get(ctx, key)

	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case entry != nil:
		result = "hit"
	}
	c.metrics.RecordCacheOperation(c.backend, "get", result)
	c.logger.CacheAccess(ctx, c.backend, "get", entry != nil, err)
	return entry, err
}

func (c *InstrumentedQuoteCache) Put(ctx context.Context, key string, entry domain.CachedQuote) error {
	err := c.inner.Put(ctx, key, entry)

	result := "ok"
	if err != nil {
		result = "error"
	}
	c.metrics.RecordCacheOperation(c.backend, "put", result)
	c.logger.CacheAccess(ctx, c.backend, "put", false, err)
	return err
}
