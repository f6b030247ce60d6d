package inference

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoModel             = errors.New("inference: model required")
	ErrNoChoices           = errors.New("inference: completion has no choices")
	ErrProviderUnavailable = errors.New("inference: no completion configured")
)

// APIError is a non-200 answer from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
	Provider   string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("inference [%s]: status %d", e.Provider, e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	return msg + ": " + e.Message
}

// IsUnauthorized reports a rejected or missing API key.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsRetryable reports rate limiting and server-side failures.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ProviderError tags a transport or decoding failure with its provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return "inference [" + e.Provider + "]: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// WrapError returns nil for a nil err.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
