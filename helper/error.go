package helper

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is wrapped by a ProviderError when a provider answered
// but the payload is missing the expected field.
var ErrMalformedResponse = errors.New("malformed provider response")

// NewError wraps err with the operation that failed
func NewError(operation string, err error) error {
	return fmt.Errorf("error %s: %w", operation, err)
}

// ProviderError is returned when an embedding or generation provider call fails.
// It is never retried inside the library.
type ProviderError struct {
	Provider string // e.g. "ollama", "openai", "hugot"
	Op       string // "embed" or "generate"
	Err      error
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider string, op string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Err:      err,
	}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err is or wraps a ProviderError
func IsProviderError(err error) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr)
}
