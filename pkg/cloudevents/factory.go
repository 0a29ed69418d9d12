package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/agexparts/freight-service/pkg/logging"
)

// EventFactory creates CloudEvents for a single source
type EventFactory struct {
	source string
	now    func() time.Time
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source, now: time.Now}
}

// CreateEvent creates a new CloudEvent, carrying the correlation ID and
// trace parent found in ctx
func (f *EventFactory) CreateEvent(ctx context.Context, eventType, subject string, data interface{}) *CloudEvent {
	event := &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            f.now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}

	if id, ok := ctx.Value(logging.CorrelationIDKey).(string); ok {
		event.CorrelationID = id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		event.TraceParent = "00-" + sc.TraceID().String() + "-" + sc.SpanID().String() + "-" + sc.TraceFlags().String()
	}

	return event
}

// CreateQuoteServedEvent creates a FreightQuoteServed event keyed by destination ZIP
func (f *EventFactory) CreateQuoteServedEvent(ctx context.Context, data QuoteServedData) *CloudEvent {
	return f.CreateEvent(ctx, FreightQuoteServed, "quote/"+data.DestinationPostal, data)
}

// CreateQuoteFailedEvent creates a FreightQuoteFailed event
func (f *EventFactory) CreateQuoteFailedEvent(ctx context.Context, data QuoteFailedData) *CloudEvent {
	return f.CreateEvent(ctx, FreightQuoteFailed, "quote/"+data.DestinationPostal, data)
}
