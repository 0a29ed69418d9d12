package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Standard error codes
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeConfigurationError   = "CONFIGURATION_ERROR"
	CodeCarrierAuthError     = "CARRIER_AUTH_ERROR"
	CodeCarrierRatesNotFound = "CARRIER_RATES_NOT_FOUND"
	CodeCarrierUnavailable   = "CARRIER_UNAVAILABLE"
	CodeNotFound             = "RESOURCE_NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeBadRequest           = "BAD_REQUEST"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	CodeTimeout              = "TIMEOUT"
)

// AppError represents an application error with HTTP status and error code
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap wraps an existing error
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates a new AppError
func NewAppError(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrConfiguration creates an error for missing or invalid service configuration
func ErrConfiguration(message string) *AppError {
	return NewAppError(CodeConfigurationError, message, http.StatusInternalServerError)
}

// ErrCarrierAuth creates a carrier authentication error. The status mirrors
// the carrier's when known and defaults to 500.
func ErrCarrierAuth(message string, carrierStatus int) *AppError {
	return NewAppError(CodeCarrierAuthError, message, statusOrDefault(carrierStatus, http.StatusInternalServerError))
}

// ErrCarrierRatesNotFound creates a rates-not-found error
func ErrCarrierRatesNotFound(message string, carrierStatus int) *AppError {
	return NewAppError(CodeCarrierRatesNotFound, message, statusOrDefault(carrierStatus, http.StatusUnprocessableEntity))
}

// ErrCarrierUnavailable creates a carrier failure error mirroring the carrier status, default 502
func ErrCarrierUnavailable(message string, carrierStatus int) *AppError {
	return NewAppError(CodeCarrierUnavailable, message, statusOrDefault(carrierStatus, http.StatusBadGateway))
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrInternal creates an internal error
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message, http.StatusInternalServerError)
}

// ErrServiceUnavailable creates a service unavailable error
func ErrServiceUnavailable(service string) *AppError {
	return NewAppError(CodeServiceUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

// ErrTimeout creates a timeout error
func ErrTimeout(operation string) *AppError {
	return NewAppError(CodeTimeout, fmt.Sprintf("%s timed out", operation), http.StatusGatewayTimeout)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError converts a standard error to an AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return ErrInternal("").Wrap(err)
}

// MapDomainError maps common error messages to AppErrors
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"):
		return ErrNotFound("resource").Wrap(err)
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "required"):
		return ErrValidation(err.Error()).Wrap(err)
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return ErrTimeout("operation").Wrap(err)
	default:
		return ErrInternal("").Wrap(err)
	}
}

func statusOrDefault(status, fallback int) int {
	if status <= 0 {
		return fallback
	}
	return status
}
