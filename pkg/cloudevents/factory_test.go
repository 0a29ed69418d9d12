package cloudevents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agexparts/freight-service/pkg/logging"
)

func TestCreateQuoteServedEvent(t *testing.T) {
	factory := NewEventFactory(SourceFreight)
	factory.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	ctx := logging.ContextWithCorrelationID(context.Background(), "corr-1")
	total := 360.52
	event := factory.CreateQuoteServedEvent(ctx, QuoteServedData{
		Carrier:           "Estes",
		SCAC:              "EXLA",
		Total:             &total,
		DestinationPostal: "30301",
	})

	assert.Equal(t, "1.0", event.SpecVersion)
	assert.Equal(t, FreightQuoteServed, event.Type)
	assert.Equal(t, SourceFreight, event.Source)
	assert.Equal(t, "quote/30301", event.Subject)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.NotEmpty(t, event.ID)
	assert.Empty(t, event.TraceParent)
	assert.Equal(t, 2024, event.Time.Year())
}
