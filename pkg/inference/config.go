package inference

import (
	"log/slog"
	"time"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config configures a Client.
type Config struct {
	BaseURL string

	// APIKey is sent as a bearer token and never validated locally.
	APIKey string

	// Defaults applied when a ChatRequest leaves them unset.
	Model       string
	MaxTokens   int
	Temperature *float64

	Timeout time.Duration

	// MaxRetries is zero by default so that every completion attempt is
	// visible to the caller's metrics.
	MaxRetries int
	RetryDelay time.Duration

	Logger *slog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// WithBaseURL points the client at another OpenAI-compatible server,
// e.g. "http://localhost:11434/v1".
func WithBaseURL(url string) Option {
	return func(c *Config) {
		if url != "" {
			c.BaseURL = url
		}
	}
}

func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = Temperature(t) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithRetry retries 429 and 5xx responses.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}

// WithLogger sets the logger. Nil keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// DefaultConfig targets gpt-3.5-turbo on the OpenAI API.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		Model:      "gpt-3.5-turbo",
		Timeout:    60 * time.Second,
		RetryDelay: 500 * time.Millisecond,
		Logger:     slog.Default(),
	}
}

func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate requires a model. The API key is not checked.
func (c *Config) Validate() error {
	if c.Model == "" {
		return ErrNoModel
	}
	return nil
}
