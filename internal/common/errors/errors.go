// Package errors provides classified error values for the analysis pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// A single model provider call failed (network, auth, rate-limit,
	// malformed provider response). Recovered by falling through to the
	// next provider in the chain.
	ErrCodeProviderError ErrorCode = "PROVIDER_ERROR"

	// Every model provider in the chain failed. Terminal for the request.
	ErrCodeModelUnavailable ErrorCode = "MODEL_UNAVAILABLE"

	// An image search provider returned nothing usable. Never surfaced to
	// callers; resolved to the placeholder URL.
	ErrCodeImageLookupMiss ErrorCode = "IMAGE_LOOKUP_MISS"

	// Request rejected before any provider call (oversized/missing image).
	ErrCodeValidationError ErrorCode = "VALIDATION_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewProviderError creates a recoverable model provider error. The provider
// name identifies which backend failed; status is the upstream HTTP status
// (0 when the call never reached the provider).
func NewProviderError(provider string, status int, err error) *StandardError {
	details := fmt.Sprintf("provider: %s", provider)
	if status != 0 {
		details = fmt.Sprintf("provider: %s, status: %d", provider, status)
	}
	return &StandardError{
		Code:      ErrCodeProviderError,
		Message:   "Model provider call failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewModelUnavailableError creates the terminal error for a request whose
// provider chain is exhausted.
func NewModelUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelUnavailable,
		Message:   "All model providers exhausted",
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewImageLookupMissError creates an image search miss. Callers resolve it
// to the placeholder URL instead of propagating it.
func NewImageLookupMissError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeImageLookupMiss,
		Message:   "No usable image result",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable request validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationError,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsProviderError reports whether err is a recoverable provider failure.
func IsProviderError(err error) bool {
	return HasCode(err, ErrCodeProviderError)
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var std *StandardError
	if errors.As(err, &std) {
		return std.Code == code
	}
	return false
}

// HTTPStatus maps an error to the status code the API layer should return.
func HTTPStatus(err error) int {
	var std *StandardError
	if !errors.As(err, &std) {
		return http.StatusInternalServerError
	}
	switch std.Code {
	case ErrCodeValidationError:
		return http.StatusBadRequest
	case ErrCodeModelUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
