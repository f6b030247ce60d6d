package stt

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoAPIKey is returned by NewOpenAI without a key.
var ErrNoAPIKey = errors.New("stt: API key required")

// APIError is a non-200 answer from a transcription endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Provider   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stt [%s]: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsUnauthorized reports a rejected or missing API key.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ProviderError tags a transport failure with its provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return "stt [" + e.Provider + "]: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// WrapError returns nil for a nil err.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
