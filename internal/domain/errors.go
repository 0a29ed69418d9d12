package domain

import (
	"encoding/json"
	"fmt"

	"github.com/agexparts/freight-service/pkg/errors"
)

// CarrierError is a failure talking to the carrier. It keeps the raw bodies
// of the primary and retry calls so callers can see what the carrier said.
type CarrierError struct {
	Code     string
	Message  string
	Status   int
	Response json.RawMessage
	Retry    json.RawMessage
	RetryErr string
	Err      error
}

func (e *CarrierError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Code, e.Message, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
}

func (e *CarrierError) Unwrap() error {
	return e.Err
}

// AppError maps the carrier failure onto the service error taxonomy
func (e *CarrierError) AppError() *errors.AppError {
	var appErr *errors.AppError
	switch e.Code {
	case errors.CodeCarrierAuthError:
		appErr = errors.ErrCarrierAuth(e.Message, e.Status)
	case errors.CodeCarrierRatesNotFound:
		appErr = errors.ErrCarrierRatesNotFound(e.Message, e.Status)
	default:
		appErr = errors.ErrCarrierUnavailable(e.Message, e.Status)
	}
	return appErr.Wrap(e)
}

// NewAuthError reports a failed or tokenless authenticate call
func NewAuthError(message string, status int, body []byte, err error) *CarrierError {
	return &CarrierError{
		Code:     errors.CodeCarrierAuthError,
		Message:  message,
		Status:   status,
		Response: RawJSON(body),
		Err:      err,
	}
}

// NewCarrierUnavailable reports a quote failure the pipeline could not recover from
func NewCarrierUnavailable(message string, status int, body []byte, err error) *CarrierError {
	return &CarrierError{
		Code:     errors.CodeCarrierUnavailable,
		Message:  message,
		Status:   status,
		Response: RawJSON(body),
		Err:      err,
	}
}

// ErrMissingDestinationPostal is returned when no postal code variant is present
func ErrMissingDestinationPostal() *errors.AppError {
	return errors.ErrValidation("missing destination postal code")
}

// ErrIncompleteQuoteRequest is returned when a prebuilt quoteRequest lacks
// its ship date or a postal code
func ErrIncompleteQuoteRequest() *errors.AppError {
	return errors.ErrValidation("incomplete quoteRequest")
}

// ErrHandlingUnitTooHeavy is returned when a handling unit's gross weight
// exceeds MaxHandlingUnitWeight
func ErrHandlingUnitTooHeavy(index int) *errors.AppError {
	return errors.ErrValidation(fmt.Sprintf("handling unit %d exceeds %d lb", index+1, MaxHandlingUnitWeight)).
		WithDetail("handlingUnit", fmt.Sprint(index))
}
