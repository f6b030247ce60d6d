package tts

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoAPIKey     = errors.New("tts: API key required")
	ErrNoVoice      = errors.New("tts: voice required")
	ErrInvalidSpeed = errors.New("tts: speed must be between 0.25 and 4.0")
	ErrEmptyAudio   = errors.New("tts: provider returned no audio")

	// ErrProviderUnavailable is returned by a Mock without a SynthesizeFunc.
	ErrProviderUnavailable = errors.New("tts: no synthesizer configured")
)

// APIError is a non-200 answer from the speech endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Provider   string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("tts [%s]: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tts [%s]: status %d %s: %s", e.Provider, e.StatusCode, e.Code, e.Message)
}

func (e *APIError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) IsRateLimited() bool  { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) IsServerError() bool  { return e.StatusCode >= 500 }

// IsRetryable reports whether the same request may succeed later.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// ProviderError tags a transport failure with its provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return "tts [" + e.Provider + "]: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// WrapError returns nil for a nil err.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
