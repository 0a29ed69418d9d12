package workflows

import (
	"encoding/json"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/agexparts/freight-service/internal/domain"
)

// FreightQuoteInput is the input for the freight quote workflow
type FreightQuoteInput struct {
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"requestId,omitempty"`
}

// QuoteFailureDetails is attached to carrier failures raised by the quote
// activity so workflow callers get the same diagnostics as HTTP callers.
type QuoteFailureDetails struct {
	Status        int             `json:"status"`
	EstesResponse json.RawMessage `json:"estesResponse,omitempty"`
	Retry         json.RawMessage `json:"retry,omitempty"`
	RetryError    string          `json:"retryError,omitempty"`
}

// FreightQuoteWorkflow runs the quote pipeline as a single activity. The
// pipeline already performs its own ZIP-only retry and cache fallback, so the
// activity is attempted exactly once.
func FreightQuoteWorkflow(ctx workflow.Context, input FreightQuoteInput) (*domain.NormalizedQuote, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting freight quote workflow", "requestId", input.RequestID)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: QuoteActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var quote domain.NormalizedQuote
	if err := workflow.ExecuteActivity(ctx, GetFreightQuoteActivity, input).Get(ctx, &quote); err != nil {
		logger.Error("Freight quote failed", "requestId", input.RequestID, "error", err)
		return nil, fmt.Errorf("freight quote failed: %w", err)
	}

	logger.Info("Freight quote completed",
		"requestId", input.RequestID,
		"quoteNumber", quote.QuoteNumber,
		"cached", quote.Cached,
		"retryAttempted", quote.RetryAttempted,
	)
	return &quote, nil
}
