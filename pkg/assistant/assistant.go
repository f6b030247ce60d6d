// Package assistant implements the spoken question-answering session:
// capturing speech with bounded retries, answering questions, classifying
// feedback sentiment, and the interaction loop that ties them together.
//
// Every component updates a shared *metrics.Recorder. Nothing in this
// package returns errors to the caller; failures are absorbed into
// fallback replies and zero entries in the success tallies.
package assistant

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
)

// Spoken prompts and replies.
const (
	QuestionPrompt = "Please ask your question. Say 'exit' to end the session."
	FeedbackPrompt = "Did that answer your question? Please say 'yes', 'no', or 'it was helpful.'"
	RetryPrompt    = "Sorry, I didn't catch that. Could you please repeat?"

	AnswerFallback    = "I'm sorry, I couldn't get the answer at the moment."
	SentimentFallback = "Unable to analyze sentiment."

	// ExitCommand ends the session when spoken as a question.
	ExitCommand = "exit"
)

// Defaults.
const (
	DefaultModel   = "gpt-3.5-turbo"
	DefaultRetries = 3
	DefaultPause   = 2 * time.Second
)

// Listener captures one utterance from the microphone.
type Listener interface {
	Listen(ctx context.Context) (audio.Clip, error)
}

// Speaker says text out loud, blocking until playback finishes.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Config holds session settings shared by every component.
type Config struct {
	// Model is the chat model for answers and sentiment.
	Model string

	// Retries bounds recognition attempts per capture.
	Retries int

	// Pause is the delay between interactions.
	Pause time.Duration

	// Out receives the user-facing transcript. Defaults to stdout.
	Out io.Writer

	Logger *slog.Logger

	// Sampler reads process memory. Defaults to the current process.
	Sampler metrics.Sampler

	// LenientExit accepts "Exit." and "exit!" as the exit command. Set it for
	// recognizers that punctuate their transcripts.
	LenientExit bool
}

// DefaultConfig returns the settings the assistant ships with.
func DefaultConfig() Config {
	return Config{
		Model:   DefaultModel,
		Retries: DefaultRetries,
		Pause:   DefaultPause,
		Out:     os.Stdout,
		Logger:  slog.Default(),
		Sampler: metrics.NewProcessSampler(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Retries <= 0 {
		c.Retries = d.Retries
	}
	if c.Pause < 0 {
		c.Pause = 0
	}
	if c.Out == nil {
		c.Out = io.Discard
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.Sampler == nil {
		c.Sampler = d.Sampler
	}
	return c
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
