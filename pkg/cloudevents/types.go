package cloudevents

import "time"

// Event types published by the freight service
const (
	FreightQuoteServed = "agex.freight.quote.served"
	FreightQuoteFailed = "agex.freight.quote.failed"
)

// SourceFreight is the CloudEvents source for this service
const SourceFreight = "/agex/freight-service"

// CloudEvent represents a CloudEvents v1.0 compliant event
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Extensions
	CorrelationID string `json:"agexcorrelationid,omitempty"`
	TraceParent   string `json:"traceparent,omitempty"`
}

// QuoteServedData is the payload of FreightQuoteServed
type QuoteServedData struct {
	Carrier           string   `json:"carrier"`
	SCAC              string   `json:"scac"`
	QuoteNumber       string   `json:"quoteNumber,omitempty"`
	Total             *float64 `json:"total"`
	TransitDays       *int     `json:"transitDays,omitempty"`
	OriginPostal      string   `json:"originPostalCode"`
	DestinationPostal string   `json:"destinationPostalCode"`
	TotalWeight       int      `json:"totalShipmentWeight"`
	RetryAttempted    bool     `json:"retryAttempted"`
	Cached            bool     `json:"cached"`
}

// QuoteFailedData is the payload of FreightQuoteFailed
type QuoteFailedData struct {
	Carrier           string `json:"carrier"`
	Code              string `json:"code"`
	Message           string `json:"message"`
	Status            int    `json:"status"`
	DestinationPostal string `json:"destinationPostalCode,omitempty"`
	RetryAttempted    bool   `json:"retryAttempted"`
}
