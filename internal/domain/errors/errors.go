package errors

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrGatewayNotConfigured = errors.New("payment gateway credentials not configured")

	// Provider errors
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderRequest     = errors.New("provider request failed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents a validation error. Message is safe to show to
// the caller as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError is returned when a provider answers with a non-2xx status.
// Body holds the provider's response bytes untouched.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Provider, e.StatusCode)
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(provider string, statusCode int, body []byte) *UpstreamError {
	return &UpstreamError{
		Provider:   provider,
		StatusCode: statusCode,
		Body:       body,
	}
}
