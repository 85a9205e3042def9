package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a malformed chat request
	ErrValidation = errors.New("invalid request")
	// ErrMethodNotAllowed indicates a method other than POST or OPTIONS
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrUpstream indicates the completion or booking provider failed
	ErrUpstream = errors.New("upstream provider failed")
	// ErrConfiguration indicates a required setting is missing
	ErrConfiguration = errors.New("service misconfigured")
	// ErrRateLimited indicates rate limit exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError carries a client-facing reason and matches ErrValidation
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps ErrUpstream with the failing provider and cause
func UpstreamError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, provider, err)
}
