package tts

import (
	"log/slog"
	"time"
)

// Config configures a Provider. Build it with DefaultConfig and WithXxx options.
type Config struct {
	APIKey  string
	BaseURL string

	Voice string
	Model string

	// Speed multiplies the speaking rate, 0.25 to 4.0. 1.0 is roughly 150
	// words per minute.
	Speed float64

	Timeout time.Duration

	// MaxRetries applies to 429 and 5xx responses only.
	MaxRetries int
	RetryDelay time.Duration

	Logger *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides DefaultBaseURL. Empty keeps the default.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		if url != "" {
			c.BaseURL = url
		}
	}
}

// WithVoice picks the voice. Empty keeps the default.
func WithVoice(voice string) Option {
	return func(c *Config) {
		if voice != "" {
			c.Voice = voice
		}
	}
}

// WithModel picks the model. Empty keeps the default.
func WithModel(model string) Option {
	return func(c *Config) {
		if model != "" {
			c.Model = model
		}
	}
}

func WithSpeed(speed float64) Option {
	return func(c *Config) { c.Speed = speed }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.Timeout = timeout }
}

func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}

// WithLogger sets the logger. Nil keeps slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// DefaultConfig returns the alloy voice on tts-1 at normal speed.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		Voice:      VoiceAlloy,
		Model:      ModelTTS1,
		Speed:      1.0,
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		RetryDelay: 200 * time.Millisecond,
		Logger:     slog.Default(),
	}
}

func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks the key, the voice and the speed range.
func (c *Config) Validate() error {
	switch {
	case c.APIKey == "":
		return ErrNoAPIKey
	case c.Voice == "":
		return ErrNoVoice
	case c.Speed < 0.25 || c.Speed > 4.0:
		return ErrInvalidSpeed
	}
	return nil
}
