package activities

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/agexparts/freight-service/internal/domain"
	"github.com/agexparts/freight-service/internal/workflows"
	apperrors "github.com/agexparts/freight-service/pkg/errors"
	"github.com/agexparts/freight-service/pkg/logging"
)

// QuoteService runs the freight quote pipeline
type QuoteService interface {
	GetQuote(ctx context.Context, payload []byte) (*domain.NormalizedQuote, error)
}

// QuoteActivities contains the freight quote activities
type QuoteActivities struct {
	service QuoteService
	logger  *logging.Logger
}

// NewQuoteActivities creates a new QuoteActivities instance
func NewQuoteActivities(service QuoteService, logger *logging.Logger) *QuoteActivities {
	return &QuoteActivities{
		service: service,
		logger:  logger,
	}
}

// GetFreightQuote runs the quote pipeline for a workflow
func (a *QuoteActivities) GetFreightQuote(ctx context.Context, input workflows.FreightQuoteInput) (*domain.NormalizedQuote, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Requesting freight quote", "requestId", input.RequestID)

	if input.RequestID != "" {
		ctx = logging.ContextWithRequestID(ctx, input.RequestID)
	}

	start := time.Now()
	a.logger.ActivityStart(ctx, workflows.GetFreightQuoteActivity)
	quote, err := a.service.GetQuote(ctx, input.Payload)
	a.logger.ActivityComplete(ctx, workflows.GetFreightQuoteActivity, time.Since(start), err == nil)

	if err != nil {
		logger.Error("Freight quote failed", "requestId", input.RequestID, "error", err)
		return nil, toApplicationError(err)
	}

	logger.Info("Freight quote served",
		"requestId", input.RequestID,
		"quoteNumber", quote.QuoteNumber,
		"cached", quote.Cached,
	)
	return quote, nil
}

// toApplicationError converts pipeline errors into Temporal application
// errors typed by error code. Bad input and missing credentials never
// succeed on a rerun.
func toApplicationError(err error) error {
	var carrierErr *domain.CarrierError
	if errors.As(err, &carrierErr) {
		appErr := carrierErr.AppError()
		return temporal.NewApplicationErrorWithCause(carrierErr.Message, appErr.Code, err, workflows.QuoteFailureDetails{
			Status:        appErr.HTTPStatus,
			EstesResponse: carrierErr.Response,
			Retry:         carrierErr.Retry,
			RetryError:    carrierErr.RetryErr,
		})
	}

	appErr := apperrors.FromError(err)
	switch appErr.Code {
	case apperrors.CodeValidationError, apperrors.CodeConfigurationError:
		return temporal.NewNonRetryableApplicationError(appErr.Message, appErr.Code, err)
	}
	return temporal.NewApplicationErrorWithCause(appErr.Message, appErr.Code, err)
}
