package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order with this id already exists")
	ErrInvalidTransition = errors.New("status transition is not allowed")
)

// ValidationError describes a request that is missing or has malformed
// required fields. Its message is safe to return to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ProviderError wraps a failure of the external payment provider.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "payment provider error: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
