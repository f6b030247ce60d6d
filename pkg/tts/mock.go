package tts

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
)

// Mock is a scripted Provider that records the text it was asked to say.
type Mock struct {
	// SynthesizeFunc answers each call. A nil func fails with ErrProviderUnavailable.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)

	mu    sync.Mutex
	texts []string
}

// NewMock returns 20ms of silence per character.
func NewMock() *Mock {
	return &Mock{SynthesizeFunc: Silence}
}

// WithError fails every call with err.
func WithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(context.Context, string) (*AudioResult, error) {
			return nil, err
		},
	}
}

// WithLatency delays m's answers by d, honoring ctx.
func WithLatency(m *Mock, d time.Duration) *Mock {
	next := m.SynthesizeFunc
	m.SynthesizeFunc = func(ctx context.Context, text string) (*AudioResult, error) {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if next == nil {
			return nil, WrapError("mock", ErrProviderUnavailable)
		}
		return next(ctx, text)
	}
	return m
}

// Silence synthesizes 20ms of TTS-format silence per character.
func Silence(_ context.Context, text string) (*AudioResult, error) {
	d := time.Duration(len(text)) * 20 * time.Millisecond
	return &AudioResult{
		Audio:     make([]byte, audio.TTS.BytesFor(d)),
		Format:    audio.TTS,
		Duration:  d,
		CharCount: len(text),
	}, nil
}

func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	fn := m.SynthesizeFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, WrapError("mock", ErrProviderUnavailable)
	}
	return fn(ctx, text)
}

// CallCount returns the number of Synthesize calls. Other methods are not tracked.
func (m *Mock) CallCount(method string) int {
	if method != "Synthesize" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

// Texts returns every synthesized text, oldest first.
func (m *Mock) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Reset forgets recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.texts = nil
	m.mu.Unlock()
}

var _ Provider = (*Mock)(nil)

// MockSpeaker records spoken lines instead of playing them.
type MockSpeaker struct {
	// Err is returned from every Speak call after recording.
	Err error

	mu   sync.Mutex
	said []string
}

func (m *MockSpeaker) Speak(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.said = append(m.said, text)
	return m.Err
}

// Said returns every spoken line in order.
func (m *MockSpeaker) Said() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.said...)
}
