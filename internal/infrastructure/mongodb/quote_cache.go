package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agexparts/freight-service/internal/domain"
)

const quoteCacheCollection = "quote_cache"

// quoteCacheDocument stores the breakdown as a JSON string so carrier
// payloads survive the BSON round trip unchanged
type quoteCacheDocument struct {
	Key              string    `bson:"_id"`
	Timestamp        time.Time `bson:"timestamp"`
	Carrier          string    `bson:"carrier"`
	SCAC             string    `bson:"scac"`
	QuoteNumber      string    `bson:"quoteNumber"`
	ServiceLevelText string    `bson:"serviceLevelText,omitempty"`
	TransitDays      *int      `bson:"transitDays,omitempty"`
	Total            *float64  `bson:"total"`
	Breakdown        string    `bson:"breakdown,omitempty"`
	RetryAttempted   bool      `bson:"retryAttempted"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}

// QuoteCache is a MongoDB implementation of domain.QuoteCache
type QuoteCache struct {
	collection *mongo.Collection
}

// NewQuoteCache creates a quote cache over the quote_cache collection
func NewQuoteCache(db *mongo.Database) *QuoteCache {
	return &QuoteCache{collection: db.Collection(quoteCacheCollection)}
}

func (c *QuoteCache) Get(ctx context.Context, key string) (*domain.CachedQuote, error) {
	var doc quoteCacheDocument
	err := c.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached quote: %w", err)
	}
	return doc.toDomain(), nil
}

func (c *QuoteCache) Put(ctx context.Context, key string, entry domain.CachedQuote) error {
	doc := fromDomain(key, entry)
	doc.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	if _, err := c.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to store cached quote: %w", err)
	}
	return nil
}

func fromDomain(key string, entry domain.CachedQuote) quoteCacheDocument {
	return quoteCacheDocument{
		Key:              key,
		Timestamp:        entry.Timestamp.UTC(),
		Carrier:          entry.Carrier,
		SCAC:             entry.SCAC,
		QuoteNumber:      entry.QuoteNumber,
		ServiceLevelText: entry.ServiceLevelText,
		TransitDays:      entry.TransitDays,
		Total:            entry.Total,
		Breakdown:        string(entry.Breakdown),
		RetryAttempted:   entry.RetryAttempted,
	}
}

func (d quoteCacheDocument) toDomain() *domain.CachedQuote {
	entry := &domain.CachedQuote{
		Timestamp: d.Timestamp,
		NormalizedQuote: domain.NormalizedQuote{
			Carrier:          d.Carrier,
			SCAC:             d.SCAC,
			QuoteNumber:      d.QuoteNumber,
			ServiceLevelText: d.ServiceLevelText,
			TransitDays:      d.TransitDays,
			Total:            d.Total,
			RetryAttempted:   d.RetryAttempted,
		},
	}
	if d.Breakdown != "" {
		entry.Breakdown = json.RawMessage(d.Breakdown)
	}
	return entry
}
