package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
)

// Player plays PCM16 audio. *audio.Player satisfies it.
type Player interface {
	Play(ctx context.Context, pcm []byte, f audio.Format) error
}

// Speaker synthesizes text and plays it, blocking until playback finishes.
// Every utterance is echoed to Out.
type Speaker struct {
	provider Provider
	player   Player
	out      io.Writer
	logger   *slog.Logger

	mu sync.Mutex
}

// SpeakerOption configures a Speaker.
type SpeakerOption func(*Speaker)

// WithOutput sets where spoken lines are echoed. Defaults to stdout.
func WithOutput(w io.Writer) SpeakerOption {
	return func(s *Speaker) {
		s.out = w
	}
}

// WithSpeakerLogger sets the logger.
func WithSpeakerLogger(logger *slog.Logger) SpeakerOption {
	return func(s *Speaker) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpeaker creates a speaker.
func NewSpeaker(provider Provider, player Player, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		provider: provider,
		player:   player,
		out:      os.Stdout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "tts.speaker")
	return s
}

// Speak says text out loud. Blank text is ignored.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out != nil {
		fmt.Fprintf(s.out, "Speaking: %s\n", text)
	}

	result, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	s.logger.Debug("playing", "duration", result.Duration, "chars", result.CharCount)

	if err := s.player.Play(ctx, result.Audio, result.Format); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}
