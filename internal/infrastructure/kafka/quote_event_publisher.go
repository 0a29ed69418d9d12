// Package kafka publishes freight quote outcomes as CloudEvents.
package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/agexparts/freight-service/internal/domain"
	"github.com/agexparts/freight-service/pkg/cloudevents"
	apperrors "github.com/agexparts/freight-service/pkg/errors"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/metrics"
)

// EventProducer is the subset of the shared Kafka producer used here
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error
}

// QuoteEventPublisher implements domain.EventPublisher. With a nil
// producer every publish is a no-op.
type QuoteEventPublisher struct {
	producer EventProducer
	factory  *cloudevents.EventFactory
	topic    string
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// NewQuoteEventPublisher creates a publisher writing to topic
func NewQuoteEventPublisher(producer EventProducer, factory *cloudevents.EventFactory, topic string, logger *logging.Logger, m *metrics.Metrics) *QuoteEventPublisher {
	return &QuoteEventPublisher{
		producer: producer,
		factory:  factory,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

func (p *QuoteEventPublisher) PublishQuoteServed(ctx context.Context, env *domain.ShipmentEnvelope, quote *domain.NormalizedQuote) error {
	data := cloudevents.QuoteServedData{
		Carrier:        quote.Carrier,
		SCAC:           quote.SCAC,
		QuoteNumber:    quote.QuoteNumber,
		Total:          quote.Total,
		TransitDays:    quote.TransitDays,
		RetryAttempted: quote.RetryAttempted,
		Cached:         quote.Cached,
	}
	if env != nil {
		data.OriginPostal = env.Origin.PostalCode
		data.DestinationPostal = env.Destination.PostalCode
		data.TotalWeight = env.TotalShipmentWeight
	}
	return p.publish(ctx, p.factory.CreateQuoteServedEvent(ctx, data))
}

func (p *QuoteEventPublisher) PublishQuoteFailed(ctx context.Context, env *domain.ShipmentEnvelope, err error) error {
	data := cloudevents.QuoteFailedData{Carrier: "Estes"}

	var carrierErr *domain.CarrierError
	if errors.As(err, &carrierErr) {
		appErr := carrierErr.AppError()
		data.Code = carrierErr.Code
		data.Message = carrierErr.Message
		data.Status = appErr.HTTPStatus
		data.RetryAttempted = len(carrierErr.Retry) > 0 || carrierErr.RetryErr != ""
	} else {
		appErr := apperrors.FromError(err)
		data.Code = appErr.Code
		data.Message = appErr.Message
		data.Status = appErr.HTTPStatus
	}
	if env != nil {
		data.DestinationPostal = env.Destination.PostalCode
	}
	return p.publish(ctx, p.factory.CreateQuoteFailedEvent(ctx, data))
}

func (p *QuoteEventPublisher) publish(ctx context.Context, event *cloudevents.CloudEvent) error {
	if p.producer == nil {
		return nil
	}

	start := time.Now()
	err := p.producer.PublishEvent(ctx, p.topic, event)
	duration := time.Since(start)

	p.metrics.RecordKafkaPublish(p.topic, event.Type, err == nil, duration)
	p.logger.KafkaPublish(ctx, p.topic, event.Type, err == nil, duration)
	return err
}
