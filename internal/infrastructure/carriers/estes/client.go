// Package estes is the Estes Express rate quote adapter.
package estes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agexparts/freight-service/internal/domain"
	apperrors "github.com/agexparts/freight-service/pkg/errors"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/metrics"
	"github.com/agexparts/freight-service/pkg/resilience"
)

const (
	CarrierName = "Estes"
	SCAC        = "EXLA"

	callAuthenticate = "authenticate"
	callRateQuote    = "rate_quote"

	maxBodyBytes = 4 << 20
)

// errUpstream marks a 5xx response so the breaker counts it while the
// response itself still reaches the caller
var errUpstream = errors.New("carrier returned a server error")

// Config holds the carrier endpoints and credentials
type Config struct {
	AuthURL   string
	RatesURL  string
	APIKey    string
	BasicAuth string
	RunLog    bool
	Timeout   time.Duration
}

// Client implements domain.CarrierGateway for Estes
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// NewClient creates an Estes client. m may be nil.
func NewClient(config Config, logger *logging.Logger, m *metrics.Metrics) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	logger = logger.WithComponent("estes")

	var observer resilience.StateObserver
	if m != nil {
		observer = m
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("estes"), logger.Logger, observer),
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("freight-service/estes"),
	}
}

// CheckConfig fails before any network call when credentials are missing
func (c *Client) CheckConfig() error {
	switch {
	case c.config.APIKey == "":
		return apperrors.ErrConfiguration("Estes API key is not configured")
	case c.config.BasicAuth == "":
		return apperrors.ErrConfiguration("Estes Basic credential is not configured")
	case c.config.AuthURL == "" || c.config.RatesURL == "":
		return apperrors.ErrConfiguration("Estes endpoints are not configured")
	}
	return nil
}

// Authenticate exchanges the API key and Basic credential for a bearer token
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	headers := http.Header{}
	headers.Set("apikey", c.config.APIKey)
	headers.Set("Authorization", "Basic "+c.config.BasicAuth)

	resp, err := c.post(ctx, callAuthenticate, c.config.AuthURL, headers, nil)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return "", err
		}
		return "", domain.NewAuthError("Estes authentication failed", 0, nil, err)
	}
	if resp.Failed() {
		return "", domain.NewAuthError("Estes authentication failed", resp.Status, resp.Body, nil)
	}

	token := firstText(object(decode(resp.Body)), "bearerToken", "token", "accessToken", "access_token")
	if token == "" {
		return "", domain.NewAuthError("Estes authentication returned no token", 0, resp.Body, nil)
	}
	return token, nil
}

// RequestQuote posts the envelope to the rates endpoint and returns the raw
// result without judging it. Only a transport failure or an open breaker is
// reported as an error.
func (c *Client) RequestQuote(ctx context.Context, token string, env *domain.ShipmentEnvelope) (*domain.CarrierResponse, error) {
	payload, err := json.Marshal(newRateRequest(env))
	if err != nil {
		return nil, apperrors.ErrInternal("failed to encode rate request").Wrap(err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("apikey", c.config.APIKey)
	headers.Set("Content-Type", "application/json")

	if c.config.RunLog {
		c.logger.WithContext(ctx).Info("Estes rate request", "body", string(payload))
	}

	resp, err := c.post(ctx, callRateQuote, c.config.RatesURL, headers, payload)
	if err != nil {
		return nil, err
	}

	if c.config.RunLog {
		c.logger.WithContext(ctx).Info("Estes rate response", "status", resp.Status, "body", string(resp.Body))
	}
	return resp, nil
}

// post sends one request through the breaker. Transport errors map to 502
// and breaker rejections to 503.
func (c *Client) post(ctx context.Context, call, url string, headers http.Header, body []byte) (*domain.CarrierResponse, error) {
	ctx, span := c.tracer.Start(ctx, "estes."+call, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("carrier", CarrierName),
		attribute.String("carrier.call", call),
	)

	start := time.Now()
	resp, err := resilience.Execute(ctx, c.breaker, func(ctx context.Context) (*domain.CarrierResponse, error) {
		return c.do(ctx, url, headers, body)
	})
	duration := time.Since(start)

	if errors.Is(err, errUpstream) {
		err = nil
	}

	status := 0
	if resp != nil {
		status = resp.Status
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	c.metrics.RecordCarrierCall(CarrierName, call, status, duration)
	c.logger.CarrierCall(ctx, CarrierName, call, status, duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, resilience.ErrCircuitOpen) {
			unavailable := apperrors.ErrServiceUnavailable(CarrierName).Wrap(err)
			return nil, domain.NewCarrierUnavailable(unavailable.Message, unavailable.HTTPStatus, nil, unavailable)
		}
		return nil, domain.NewCarrierUnavailable("Estes request failed", http.StatusBadGateway, nil, err)
	}
	if resp.Failed() {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.Status))
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, url string, headers http.Header, body []byte) (*domain.CarrierResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header = headers

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &domain.CarrierResponse{Status: httpResp.StatusCode, Body: data}
	if httpResp.StatusCode >= http.StatusInternalServerError {
		return resp, errUpstream
	}
	return resp, nil
}
