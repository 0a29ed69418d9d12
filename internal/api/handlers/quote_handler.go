package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agexparts/freight-service/internal/domain"
	apperrors "github.com/agexparts/freight-service/pkg/errors"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/middleware"
)

const maxPayloadBytes = 1 << 20

// QuoteService is the application entry point used by the handler
type QuoteService interface {
	GetQuote(ctx context.Context, payload []byte) (*domain.NormalizedQuote, error)
}

// QuoteErrorResponse is the failure body. Carrier bodies are passed through
// so callers can see what the carrier said on both attempts.
type QuoteErrorResponse struct {
	Error         string            `json:"error"`
	Code          string            `json:"code"`
	Status        int               `json:"status"`
	EstesResponse json.RawMessage   `json:"estesResponse,omitempty"`
	Retry         json.RawMessage   `json:"retry,omitempty"`
	RetryError    string            `json:"retryError,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	RequestID     string            `json:"requestId,omitempty"`
}

// QuoteHandler handles freight quote HTTP requests
type QuoteHandler struct {
	service QuoteService
	logger  *logging.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(service QuoteService, logger *logging.Logger) *QuoteHandler {
	return &QuoteHandler{service: service, logger: logger}
}

// RegisterRoutes registers the freight routes
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	freight := r.Group("/freight")
	{
		freight.POST("/estes/quote", h.GetEstesQuote)
	}
}

// GetEstesQuote handles POST /freight/estes/quote
func (h *QuoteHandler) GetEstesQuote(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes))
	if err != nil {
		h.respondError(c, apperrors.ErrValidation("request body could not be read").Wrap(err))
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), payload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *QuoteHandler) respondError(c *gin.Context, err error) {
	var resp QuoteErrorResponse

	var carrierErr *domain.CarrierError
	if errors.As(err, &carrierErr) {
		appErr := carrierErr.AppError()
		resp = QuoteErrorResponse{
			Error:         carrierErr.Message,
			Code:          appErr.Code,
			Status:        appErr.HTTPStatus,
			EstesResponse: carrierErr.Response,
			Retry:         carrierErr.Retry,
			RetryError:    carrierErr.RetryErr,
		}
	} else {
		appErr := apperrors.FromError(err)
		resp = QuoteErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Status:  appErr.HTTPStatus,
			Details: appErr.Details,
		}
	}
	resp.RequestID = middleware.GetRequestID(c)

	h.logger.WithContext(c.Request.Context()).Warn("Quote request failed",
		"code", resp.Code,
		"status", resp.Status,
		"error", err.Error(),
	)
	c.JSON(resp.Status, resp)
}
