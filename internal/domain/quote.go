package domain

import (
	"encoding/json"
	"time"
)

// CacheKey is the single slot holding the last successful quote
const CacheKey = "estes:last-quote"

// NormalizedQuote is the carrier-independent answer to a quote request
type NormalizedQuote struct {
	Carrier          string          `json:"carrier"`
	SCAC             string          `json:"scac"`
	QuoteNumber      string          `json:"quoteNumber"`
	ServiceLevelText string          `json:"serviceLevelText,omitempty"`
	TransitDays      *int            `json:"transitDays,omitempty"`
	Total            *float64        `json:"total"`
	Breakdown        json.RawMessage `json:"breakdown"`
	RetryAttempted   bool            `json:"retryAttempted,omitempty"`
	Cached           bool            `json:"cached,omitempty"`
}

// Priced reports whether a numeric total was extracted
func (q *NormalizedQuote) Priced() bool {
	return q != nil && q.Total != nil
}

// CachedQuote is a stored quote with the time it was produced
type CachedQuote struct {
	Timestamp time.Time `json:"timestamp"`
	NormalizedQuote
}

// Serviceable reports whether the entry may be served as a fallback at now
func (c *CachedQuote) Serviceable(now time.Time, ttl time.Duration) bool {
	if c == nil || c.Timestamp.IsZero() || !c.Priced() {
		return false
	}
	age := now.Sub(c.Timestamp)
	return age >= 0 && age <= ttl
}

// CarrierResponse is the raw result of a carrier HTTP call
type CarrierResponse struct {
	Status int
	Body   []byte
}

// Failed reports an HTTP error status or a missing response
func (r *CarrierResponse) Failed() bool {
	return r == nil || r.Status == 0 || r.Status >= 400
}

// RawJSON returns body as embeddable JSON. Bodies that are not valid JSON,
// such as HTML error pages, are wrapped as a JSON string.
func RawJSON(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
