package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agexparts/freight-service/internal/domain"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/metrics"
)

func sampleEntry() domain.CachedQuote {
	total := 360.52
	days := 2
	return domain.CachedQuote{
		Timestamp: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		NormalizedQuote: domain.NormalizedQuote{
			Carrier:     "Estes",
			SCAC:        "EXLA",
			QuoteNumber: "Q2",
			TransitDays: &days,
			Total:       &total,
			Breakdown:   json.RawMessage(`{"totalCharges":"360.52"}`),
		},
	}
}

func exerciseCache(t *testing.T, c domain.QuoteCache) {
	t.Helper()
	ctx := context.Background()

	got, err := c.Get(ctx, domain.CacheKey)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Put(ctx, domain.CacheKey, sampleEntry()))

	got, err = c.Get(ctx, domain.CacheKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Timestamp.Equal(sampleEntry().Timestamp))
	assert.InDelta(t, 360.52, *got.Total, 1e-9)
	assert.Equal(t, 2, *got.TransitDays)
	assert.JSONEq(t, `{"totalCharges":"360.52"}`, string(got.Breakdown))

	newer := sampleEntry()
	newer.QuoteNumber = "Q3"
	require.NoError(t, c.Put(ctx, domain.CacheKey, newer))

	got, err = c.Get(ctx, domain.CacheKey)
	require.NoError(t, err)
	assert.Equal(t, "Q3", got.QuoteNumber)
}

func TestMemoryQuoteCache(t *testing.T) {
	exerciseCache(t, NewMemoryQuoteCache())
}

func TestFileQuoteCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-quote.json")
	exerciseCache(t, NewFileQuoteCache(path))

	// A second instance over the same file sees the stored entry
	got, err := NewFileQuoteCache(path).Get(context.Background(), domain.CacheKey)
	require.NoError(t, err)
	assert.Equal(t, "Q3", got.QuoteNumber)
}

func TestFileQuoteCacheMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-quote.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	c := NewFileQuoteCache(path)

	_, err := c.Get(context.Background(), domain.CacheKey)
	require.Error(t, err)

	require.NoError(t, c.Put(context.Background(), domain.CacheKey, sampleEntry()))
	got, err := c.Get(context.Background(), domain.CacheKey)
	require.NoError(t, err)
	assert.Equal(t, "Q2", got.QuoteNumber)
}

func TestInstrumentedQuoteCacheRecordsResults(t *testing.T) {
	m := metrics.New(metrics.DefaultConfig("cache-test"))
	c := NewInstrumentedQuoteCache(NewMemoryQuoteCache(), "memory", logging.Nop(), m)
	ctx := context.Background()

	_, _ = c.Get(ctx, domain.CacheKey)
	require.NoError(t, c.Put(ctx, domain.CacheKey, sampleEntry()))
	_, _ = c.Get(ctx, domain.CacheKey)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheOperations.WithLabelValues("cache-test", "memory", "get", "miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheOperations.WithLabelValues("cache-test", "memory", "get", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheOperations.WithLabelValues("cache-test", "memory", "put", "ok")))
}
