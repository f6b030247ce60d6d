package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
	"github.com/teslashibe/go-voiceqa/pkg/stt"
)

// Attempt is one recognition try within a capture.
type Attempt struct {
	// Index counts from 1.
	Index   int
	Clip    audio.Clip
	Outcome stt.Outcome
}

// Capturer prompts the user and converts their reply to text, re-listening
// when the recognizer cannot make out the words.
type Capturer struct {
	cfg        Config
	listener   Listener
	recognizer stt.Recognizer
	speaker    Speaker
	recorder   *metrics.Recorder
	logger     *slog.Logger

	onAttempt func(Attempt)
}

// NewCapturer creates a capturer.
func NewCapturer(cfg Config, l Listener, r stt.Recognizer, s Speaker, rec *metrics.Recorder) *Capturer {
	cfg = cfg.withDefaults()
	return &Capturer{
		cfg:        cfg,
		listener:   l,
		recognizer: r,
		speaker:    s,
		recorder:   rec,
		logger:     cfg.Logger.With("component", "assistant.capture"),
	}
}

// OnAttempt registers a callback invoked after every recognition attempt.
func (c *Capturer) OnAttempt(fn func(Attempt)) {
	c.onAttempt = fn
}

// Capture speaks prompt, listens, and returns the recognized text.
// It makes at most maxRetries recognition attempts. The second result is
// false when nothing was recognized or the recognition service failed.
func (c *Capturer) Capture(ctx context.Context, prompt string, maxRetries int) (string, bool) {
	fmt.Fprintln(c.cfg.Out, prompt)
	c.speak(ctx, prompt)

	clip, err := c.listener.Listen(ctx)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.recorder.SampleMemory(c.cfg.Sampler); err != nil {
			c.logger.Warn("memory sample failed", "error", err)
		}

		var outcome stt.Outcome
		switch {
		case errors.Is(err, audio.ErrNoSpeech):
			outcome = stt.NotHeard()
		case err != nil:
			outcome = stt.Failed(fmt.Errorf("listen: %w", err))
		default:
			outcome = c.recognizer.Recognize(ctx, clip)
		}
		c.report(Attempt{Index: attempt, Clip: clip, Outcome: outcome})

		switch outcome.Kind {
		case stt.Recognized:
			fmt.Fprintf(c.cfg.Out, "Text heard: %s\n", outcome.Transcript)
			c.logger.Info("text heard", "attempt", attempt, "text", outcome.Transcript)
			return outcome.Transcript, true

		case stt.Unrecognized:
			fmt.Fprintln(c.cfg.Out, "Sorry, I did not understand the speech. Please try again.")
			c.logger.Info("speech not recognized", "attempt", attempt, "max", maxRetries)
			if attempt < maxRetries {
				c.speak(ctx, RetryPrompt)
				clip, err = c.listener.Listen(ctx)
			}

		default:
			fmt.Fprintln(c.cfg.Out, "Could not request results from the speech recognition service.")
			c.logger.Warn("recognition service failed", "attempt", attempt, "error", outcome.Err)
			return "", false
		}
	}

	fmt.Fprintln(c.cfg.Out, "Failed to capture speech after multiple attempts.")
	c.logger.Warn("failed to capture speech after multiple attempts", "attempts", maxRetries)
	return "", false
}

func (c *Capturer) speak(ctx context.Context, text string) {
	if err := c.speaker.Speak(ctx, text); err != nil {
		c.logger.Warn("speak failed", "error", err)
	}
}

func (c *Capturer) report(a Attempt) {
	if c.onAttempt != nil {
		c.onAttempt(a)
	}
}
