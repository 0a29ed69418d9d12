package domain

import "context"

// QuoteCache stores the last successful quote for degraded-mode fallback.
// Get returns nil, nil when the key holds nothing.
type QuoteCache interface {
	Get(ctx context.Context, key string) (*CachedQuote, error)
	Put(ctx context.Context, key string, entry CachedQuote) error
}

// CarrierGateway is a carrier's quoting API as seen by the pipeline
type CarrierGateway interface {
	// CheckConfig fails when credentials needed for any call are missing.
	// It never touches the network.
	CheckConfig() error
	Authenticate(ctx context.Context) (string, error)
	RequestQuote(ctx context.Context, token string, envelope *ShipmentEnvelope) (*CarrierResponse, error)
	RatesNotFound(resp *CarrierResponse) bool
	// NormalizeQuote always answers; Total is nil when no rule matched
	NormalizeQuote(resp *CarrierResponse) *NormalizedQuote
}

// EventPublisher announces quote outcomes
type EventPublisher interface {
	PublishQuoteServed(ctx context.Context, envelope *ShipmentEnvelope, quote *NormalizedQuote) error
	PublishQuoteFailed(ctx context.Context, envelope *ShipmentEnvelope, err error) error
}
