// Package bootstrap wires the quote pipeline shared by the API server and
// the Temporal worker.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agexparts/freight-service/internal/application"
	"github.com/agexparts/freight-service/internal/config"
	"github.com/agexparts/freight-service/internal/domain"
	"github.com/agexparts/freight-service/internal/infrastructure/cache"
	"github.com/agexparts/freight-service/internal/infrastructure/carriers/estes"
	kafkaEvents "github.com/agexparts/freight-service/internal/infrastructure/kafka"
	mongoRepo "github.com/agexparts/freight-service/internal/infrastructure/mongodb"
	"github.com/agexparts/freight-service/internal/infrastructure/postgres"
	"github.com/agexparts/freight-service/pkg/cloudevents"
	apperrors "github.com/agexparts/freight-service/pkg/errors"
	"github.com/agexparts/freight-service/pkg/kafka"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/metrics"
	"github.com/agexparts/freight-service/pkg/mongodb"
)

// Pipeline is a ready-to-use quote service plus the resources behind it
type Pipeline struct {
	Service *application.QuoteService

	ready   func(ctx context.Context) error
	closers []func(ctx context.Context) error
}

// New builds the quote pipeline from configuration. Close must be called
// once the pipeline is no longer needed.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger, m *metrics.Metrics) (*Pipeline, error) {
	defaults, err := config.LoadDefaults(cfg.DefaultsFile, cfg.Estes.Account)
	if err != nil {
		return nil, err
	}

	normalizer, err := application.NewPayloadNormalizer(defaults, time.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload normalizer: %w", err)
	}

	p := &Pipeline{ready: func(context.Context) error { return nil }}

	store, err := p.openCache(ctx, cfg, logger)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	quoteCache := cache.NewInstrumentedQuoteCache(store, cfg.Cache.Backend, logger, m)

	events := p.openEvents(cfg, logger, m)

	carrier := estes.NewClient(estes.Config{
		AuthURL:   cfg.Estes.AuthURL,
		RatesURL:  cfg.Estes.RatesURL,
		APIKey:    cfg.Estes.APIKey,
		BasicAuth: cfg.Estes.BasicAuth,
		RunLog:    cfg.Estes.RunLog,
		Timeout:   cfg.Estes.HTTPTimeout,
	}, logger, m)

	p.Service = application.NewQuoteService(normalizer, carrier, quoteCache, events, logger, m, cfg.Cache.TTL)
	return p, nil
}

// Ready reports whether the cache backend is reachable
func (p *Pipeline) Ready(ctx context.Context) error {
	return p.ready(ctx)
}

// Close releases backend connections in reverse order of creation
func (p *Pipeline) Close(ctx context.Context) error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

func (p *Pipeline) openCache(ctx context.Context, cfg *config.Config, logger *logging.Logger) (domain.QuoteCache, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		return cache.NewMemoryQuoteCache(), nil

	case config.CacheBackendFile:
		logger.Info("Using file quote cache", "path", cfg.Cache.File)
		return cache.NewFileQuoteCache(cfg.Cache.File), nil

	case config.CacheBackendMongo:
		client, err := mongodb.NewClient(ctx, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, client.Close)
		p.ready = client.HealthCheck
		logger.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)
		return mongoRepo.NewQuoteCache(client.Database()), nil

	case config.CacheBackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, apperrors.ErrConfiguration("POSTGRES_DSN is required for the postgres quote cache")
		}
		store, err := postgres.NewQuoteCache(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, func(context.Context) error { return store.Close() })
		p.ready = store.HealthCheck
		logger.Info("Connected to Postgres")
		return store, nil
	}

	return nil, apperrors.ErrConfiguration(fmt.Sprintf("unknown quote cache backend %q", cfg.Cache.Backend))
}

func (p *Pipeline) openEvents(cfg *config.Config, logger *logging.Logger, m *metrics.Metrics) *kafkaEvents.QuoteEventPublisher {
	factory := cloudevents.NewEventFactory(cloudevents.SourceFreight)

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, quote events disabled")
		return kafkaEvents.NewQuoteEventPublisher(nil, factory, kafka.Topics.FreightQuotes, logger, m)
	}

	producer := kafka.NewProducer(cfg.Kafka)
	p.closers = append(p.closers, func(context.Context) error { return producer.Close() })
	logger.Info("Kafka producer initialized", "brokers", cfg.Kafka.Brokers)
	return kafkaEvents.NewQuoteEventPublisher(producer, factory, kafka.Topics.FreightQuotes, logger, m)
}
