package application

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/agexparts/freight-service/internal/domain"
	apperrors "github.com/agexparts/freight-service/pkg/errors"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/metrics"
	"github.com/agexparts/freight-service/pkg/tracing"
)

// DefaultCacheTTL is how long a cached quote may stand in for a live one
const DefaultCacheTTL = time.Hour

// PublishTimeout bounds each quote event publish
const PublishTimeout = 2 * time.Second

// QuoteService runs the freight quote pipeline for one carrier
type QuoteService struct {
	normalizer *PayloadNormalizer
	carrier    domain.CarrierGateway
	cache      domain.QuoteCache
	events     domain.EventPublisher
	logger     *logging.Logger
	metrics    *metrics.Metrics
	cacheTTL   time.Duration
	publishTTL time.Duration
	now        func() time.Time
}

// NewQuoteService creates a QuoteService. A zero cacheTTL uses DefaultCacheTTL.
func NewQuoteService(
	normalizer *PayloadNormalizer,
	carrier domain.CarrierGateway,
	cache domain.QuoteCache,
	events domain.EventPublisher,
	logger *logging.Logger,
	m *metrics.Metrics,
	cacheTTL time.Duration,
) *QuoteService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &QuoteService{
		normalizer: normalizer,
		carrier:    carrier,
		cache:      cache,
		events:     events,
		logger:     logger.WithComponent("quote-service"),
		metrics:    m,
		cacheTTL:   cacheTTL,
		publishTTL: PublishTimeout,
		now:        time.Now,
	}
}

// GetQuote turns an inbound payload into a quote. Credentials and the
// payload are checked before any carrier call. A rates-not-found answer
// gets exactly one ZIP-only retry, and if that fails too the last cached
// quote is served while it is fresh.
func (s *QuoteService) GetQuote(ctx context.Context, payload []byte) (*domain.NormalizedQuote, error) {
	if err := s.carrier.CheckConfig(); err != nil {
		return nil, s.fail(ctx, nil, err)
	}

	env, err := s.normalizer.Normalize(payload)
	if err != nil {
		return nil, s.fail(ctx, nil, err)
	}

	token, err := s.carrier.Authenticate(ctx)
	if err != nil {
		return nil, s.fail(ctx, env, err)
	}

	resp, err := s.carrier.RequestQuote(ctx, token, env)
	if err != nil {
		return nil, s.fail(ctx, env, err)
	}

	attempt := domain.NewQuoteAttempt(resp)

	if s.carrier.RatesNotFound(resp) {
		return s.retryZipOnly(ctx, token, env, attempt)
	}

	if resp.Failed() {
		_ = attempt.Fail()
		return nil, s.fail(ctx, env, domain.NewCarrierUnavailable("Estes quote request failed", resp.Status, resp.Body, nil))
	}

	_ = attempt.Succeed()
	return s.serve(ctx, env, s.carrier.NormalizeQuote(resp), attempt)
}

func (s *QuoteService) retryZipOnly(ctx context.Context, token string, env *domain.ShipmentEnvelope, attempt *domain.QuoteAttempt) (*domain.NormalizedQuote, error) {
	if err := attempt.BeginZipOnlyRetry(); err != nil {
		return nil, s.fail(ctx, env, err)
	}

	s.logger.WithContext(ctx).Info("Rates not found, retrying with postal codes only",
		"origin", env.Origin.PostalCode,
		"destination", env.Destination.PostalCode,
	)
	tracing.AddEvent(ctx, "zip_only_retry", map[string]string{
		"origin":      env.Origin.PostalCode,
		"destination": env.Destination.PostalCode,
	})

	retryResp, retryErr := s.carrier.RequestQuote(ctx, token, env.ZipOnly())
	if err := attempt.RecordRetry(retryResp, retryErr); err != nil {
		return nil, s.fail(ctx, env, err)
	}

	if retryErr == nil && !retryResp.Failed() && !s.carrier.RatesNotFound(retryResp) {
		_ = attempt.Succeed()
		return s.serve(ctx, env, s.carrier.NormalizeQuote(retryResp), attempt)
	}

	if cached := s.freshCachedQuote(ctx); cached != nil {
		_ = attempt.ServeFallback()
		quote := cached.NormalizedQuote
		quote.Cached = true
		quote.RetryAttempted = true

		s.logger.WithContext(ctx).Warn("Serving cached quote after failed retry",
			"quoteNumber", quote.QuoteNumber,
			"cachedAt", cached.Timestamp,
		)
		s.publishServed(ctx, env, &quote)
		s.metrics.RecordQuoteOutcome(quote.Carrier, metrics.OutcomeCached, quote.Total)
		return &quote, nil
	}

	_ = attempt.Fail()
	return nil, s.fail(ctx, env, retryFailure(attempt))
}

// serve finishes a carrier-answered request. Only priced quotes are cached.
func (s *QuoteService) serve(ctx context.Context, env *domain.ShipmentEnvelope, quote *domain.NormalizedQuote, attempt *domain.QuoteAttempt) (*domain.NormalizedQuote, error) {
	quote.RetryAttempted = attempt.RetryAttempted()

	outcome := metrics.OutcomeSuccess
	switch {
	case !quote.Priced():
		outcome = metrics.OutcomeDegraded
		s.logger.WithContext(ctx).Warn("Carrier response had no recognisable total", "quoteNumber", quote.QuoteNumber)
	case quote.RetryAttempted:
		outcome = metrics.OutcomeRetried
	}

	if quote.Priced() {
		entry := domain.CachedQuote{Timestamp: s.now(), NormalizedQuote: *quote}
		if err := s.cache.Put(ctx, domain.CacheKey, entry); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to cache quote")
		}
	}

	s.publishServed(ctx, env, quote)
	s.metrics.RecordQuoteOutcome(quote.Carrier, outcome, quote.Total)
	s.logger.WithContext(ctx).Info("Quote served",
		"quoteNumber", quote.QuoteNumber,
		"retryAttempted", quote.RetryAttempted,
		"priced", quote.Priced(),
	)
	return quote, nil
}

func (s *QuoteService) freshCachedQuote(ctx context.Context) *domain.CachedQuote {
	cached, err := s.cache.Get(ctx, domain.CacheKey)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Quote cache unavailable for fallback")
		return nil
	}
	if !cached.Serviceable(s.now(), s.cacheTTL) {
		return nil
	}
	return cached
}

// retryFailure reports both carrier bodies. The status mirrors the first
// error status seen, retry first.
func retryFailure(attempt *domain.QuoteAttempt) *domain.CarrierError {
	carrierErr := &domain.CarrierError{
		Code:    apperrors.CodeCarrierUnavailable,
		Message: "Estes quote failed after ZIP-only retry",
		Err:     attempt.RetryErr,
	}
	if attempt.Primary != nil {
		carrierErr.Response = domain.RawJSON(attempt.Primary.Body)
	}
	if attempt.Retry != nil {
		carrierErr.Retry = domain.RawJSON(attempt.Retry.Body)
	}
	if attempt.RetryErr != nil {
		carrierErr.RetryErr = attempt.RetryErr.Error()
	} else {
		carrierErr.RetryErr = "rates not found after ZIP-only retry"
	}

	var transportErr *domain.CarrierError
	switch {
	case attempt.Retry != nil && attempt.Retry.Status >= http.StatusBadRequest:
		carrierErr.Status = attempt.Retry.Status
	case errors.As(attempt.RetryErr, &transportErr):
		carrierErr.Status = transportErr.Status
	case attempt.Primary != nil && attempt.Primary.Status >= http.StatusBadRequest:
		carrierErr.Status = attempt.Primary.Status
	}
	return carrierErr
}

func (s *QuoteService) fail(ctx context.Context, env *domain.ShipmentEnvelope, err error) error {
	tracing.RecordError(ctx, err)
	s.logger.WithContext(ctx).WithError(err).Warn("Quote request failed")

	pubCtx, cancel := s.publishContext(ctx)
	defer cancel()
	if pubErr := s.events.PublishQuoteFailed(pubCtx, env, err); pubErr != nil {
		s.logger.WithContext(ctx).WithError(pubErr).Warn("Failed to publish quote failure event")
	}
	s.metrics.RecordQuoteOutcome("Estes", metrics.OutcomeFailed, nil)
	return err
}

func (s *QuoteService) publishServed(ctx context.Context, env *domain.ShipmentEnvelope, quote *domain.NormalizedQuote) {
	pubCtx, cancel := s.publishContext(ctx)
	defer cancel()
	if err := s.events.PublishQuoteServed(pubCtx, env, quote); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish quote served event")
	}
}

// publishContext detaches a publish from the caller's cancellation, keeping
// its values, and caps it at publishTTL
func (s *QuoteService) publishContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.publishTTL)
}
