// Package config provides environment-backed configuration for go-voiceqa commands.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default configuration values.
const (
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "gpt-3.5-turbo"
	DefaultSTTModel     = "whisper-1"
	DefaultTTSModel     = "tts-1"
	DefaultTTSVoice     = "alloy"
	DefaultRetries      = 3
	DefaultPause        = 2 * time.Second
	DefaultTrainingFile = "data_converted.jsonl"
	DefaultPollInterval = 60 * time.Second
	DefaultTestPrompt   = "What is the capital of France?"
)

// STT backends.
const (
	STTOpenAI = "openai"
	STTGoogle = "google"
)

// Config holds every tunable for both subcommands.
// The API key is passed through untouched; a missing key surfaces as an
// authorization error on the first call that needs it.
type Config struct {
	LogLevel string

	// OpenAI-compatible endpoint.
	APIKey  string
	BaseURL string
	Model   string

	// Speech recognition.
	STTBackend   string
	STTModel     string
	Language     string
	GoogleAPIKey string

	// Speech synthesis.
	TTSModel string
	TTSVoice string
	TTSSpeed float64

	// Interaction loop.
	Retries       int
	Pause         time.Duration
	DashboardPort string

	// Fine-tuning pipeline.
	TrainingFile string
	BaseModel    string
	PollInterval time.Duration
	TestPrompt   string
}

// Default returns the configuration used when no environment overrides exist.
func Default() Config {
	return Config{
		LogLevel:     "info",
		BaseURL:      DefaultBaseURL,
		Model:        DefaultModel,
		STTBackend:   STTOpenAI,
		STTModel:     DefaultSTTModel,
		TTSModel:     DefaultTTSModel,
		TTSVoice:     DefaultTTSVoice,
		TTSSpeed:     1.0,
		Retries:      DefaultRetries,
		Pause:        DefaultPause,
		TrainingFile: DefaultTrainingFile,
		BaseModel:    DefaultModel,
		PollInterval: DefaultPollInterval,
		TestPrompt:   DefaultTestPrompt,
	}
}

// Load reads a .env file when present and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.LoadEnv(os.Getenv)
	return cfg
}

// LoadEnv applies overrides from the given lookup function.
// Unparseable numeric values are ignored and the default is kept.
func (c *Config) LoadEnv(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	c.APIKey = getenv("OPENAI_API_KEY")
	str("OPENAI_BASE_URL", &c.BaseURL)
	str("VOICEQA_MODEL", &c.Model)

	str("VOICEQA_STT", &c.STTBackend)
	c.STTBackend = strings.ToLower(c.STTBackend)
	str("VOICEQA_STT_MODEL", &c.STTModel)
	str("VOICEQA_LANGUAGE", &c.Language)
	str("GOOGLE_API_KEY", &c.GoogleAPIKey)

	str("VOICEQA_TTS_MODEL", &c.TTSModel)
	str("VOICEQA_TTS_VOICE", &c.TTSVoice)
	if v := getenv("VOICEQA_TTS_SPEED"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.TTSSpeed = f
		}
	}

	if v := getenv("VOICEQA_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retries = n
		}
	}
	if v := getenv("VOICEQA_PAUSE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Pause = d
		}
	}
	str("VOICEQA_DASHBOARD_PORT", &c.DashboardPort)

	str("VOICEQA_TRAINING_FILE", &c.TrainingFile)
	str("VOICEQA_BASE_MODEL", &c.BaseModel)
	if v := getenv("VOICEQA_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.PollInterval = d
		}
	}
	str("VOICEQA_TEST_PROMPT", &c.TestPrompt)
}
