package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agexparts/freight-service/internal/domain"
	apperrors "github.com/agexparts/freight-service/pkg/errors"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/middleware"
)

var errUnexpected = errors.New("unexpected call")

type fakeQuoteService struct {
	getQuoteFn func(context.Context, []byte) (*domain.NormalizedQuote, error)
	payloads   [][]byte
}

func (f *fakeQuoteService) GetQuote(ctx context.Context, payload []byte) (*domain.NormalizedQuote, error) {
	f.payloads = append(f.payloads, payload)
	if f.getQuoteFn == nil {
		return nil, errUnexpected
	}
	return f.getQuoteFn(ctx, payload)
}

func newTestRouter(service QuoteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig("freight-test", logging.Nop()))

	NewQuoteHandler(service, logging.Nop()).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func performRequest(router *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const quotePath = "/api/v1/freight/estes/quote"

func pricedQuote(total float64) *domain.NormalizedQuote {
	return &domain.NormalizedQuote{
		Carrier:     "Estes",
		SCAC:        "EXLA",
		QuoteNumber: "Q2",
		Total:       &total,
		Breakdown:   json.RawMessage(`{"totalCharges":"360.52"}`),
	}
}

func TestGetEstesQuoteSuccess(t *testing.T) {
	service := &fakeQuoteService{
		getQuoteFn: func(context.Context, []byte) (*domain.NormalizedQuote, error) {
			return pricedQuote(360.52), nil
		},
	}
	router := newTestRouter(service)

	body := []byte(`{"checkout":{"destination":{"postalCode":"75201"}}}`)
	resp := performRequest(router, http.MethodPost, quotePath, body, nil)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{
		"carrier":"Estes","scac":"EXLA","quoteNumber":"Q2","total":360.52,
		"breakdown":{"totalCharges":"360.52"}
	}`, resp.Body.String())
	require.Len(t, service.payloads, 1)
	assert.Equal(t, body, service.payloads[0])
}

func TestGetEstesQuoteCachedFlags(t *testing.T) {
	service := &fakeQuoteService{
		getQuoteFn: func(context.Context, []byte) (*domain.NormalizedQuote, error) {
			q := pricedQuote(299.99)
			q.Cached = true
			q.RetryAttempted = true
			return q, nil
		},
	}
	resp := performRequest(newTestRouter(service), http.MethodPost, quotePath, []byte(`{}`), nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, true, got["cached"])
	assert.Equal(t, true, got["retryAttempted"])
}

func TestGetEstesQuoteErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		check      func(t *testing.T, body QuoteErrorResponse)
	}{
		{
			name:       "validation",
			err:        domain.ErrMissingDestinationPostal(),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeValidationError,
			check: func(t *testing.T, body QuoteErrorResponse) {
				assert.Equal(t, "missing destination postal code", body.Error)
			},
		},
		{
			name:       "configuration",
			err:        apperrors.ErrConfiguration("Estes API key is not configured"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeConfigurationError,
		},
		{
			name:       "auth mirrors carrier status",
			err:        domain.NewAuthError("Estes authentication failed", http.StatusUnauthorized, []byte(`{"error":"denied"}`), nil),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperrors.CodeCarrierAuthError,
			check: func(t *testing.T, body QuoteErrorResponse) {
				assert.JSONEq(t, `{"error":"denied"}`, string(body.EstesResponse))
			},
		},
		{
			name: "carrier failure after retry",
			err: &domain.CarrierError{
				Code:     apperrors.CodeCarrierUnavailable,
				Message:  "Estes quote failed after ZIP-only retry",
				Status:   http.StatusUnprocessableEntity,
				Response: json.RawMessage(`{"error":{"code":70020}}`),
				Retry:    json.RawMessage(`{"error":{"code":70020}}`),
				RetryErr: "rates not found after ZIP-only retry",
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.CodeCarrierUnavailable,
			check: func(t *testing.T, body QuoteErrorResponse) {
				assert.JSONEq(t, `{"error":{"code":70020}}`, string(body.EstesResponse))
				assert.JSONEq(t, `{"error":{"code":70020}}`, string(body.Retry))
				assert.Equal(t, "rates not found after ZIP-only retry", body.RetryError)
			},
		},
		{
			name:       "transport failure defaults to 502",
			err:        domain.NewCarrierUnavailable("Estes request failed", 0, nil, errors.New("dial tcp")),
			wantStatus: http.StatusBadGateway,
			wantCode:   apperrors.CodeCarrierUnavailable,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeQuoteService{
				getQuoteFn: func(context.Context, []byte) (*domain.NormalizedQuote, error) {
					return nil, tt.err
				},
			}
			resp := performRequest(newTestRouter(service), http.MethodPost, quotePath, []byte(`{}`), map[string]string{
				middleware.HeaderRequestID: "req-1",
			})

			require.Equal(t, tt.wantStatus, resp.Code)
			var body QuoteErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "req-1", body.RequestID)
			assert.NotEmpty(t, body.Error)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestGetEstesQuoteRejectsNonJSON(t *testing.T) {
	service := &fakeQuoteService{}
	resp := performRequest(newTestRouter(service), http.MethodPost, quotePath, []byte(`a=b`), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.Code)
	assert.Empty(t, service.payloads)
}
