package stt

import (
	"context"
	"sync"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
)

// Mock implements Recognizer for testing.
// Outcomes are returned in order; once exhausted the last one repeats.
type Mock struct {
	// RecognizeFunc overrides the scripted outcomes when set.
	RecognizeFunc func(ctx context.Context, clip audio.Clip) Outcome

	mu       sync.Mutex
	outcomes []Outcome
	clips    []audio.Clip
}

// NewMock creates a mock that returns outcomes in sequence.
func NewMock(outcomes ...Outcome) *Mock {
	return &Mock{outcomes: outcomes}
}

// Script returns a mock that hears each transcript in turn.
// An empty string scripts an Unrecognized outcome.
func Script(texts ...string) *Mock {
	outcomes := make([]Outcome, len(texts))
	for i, t := range texts {
		outcomes[i] = Heard(t)
	}
	return NewMock(outcomes...)
}

// Recognize implements Recognizer.
func (m *Mock) Recognize(ctx context.Context, clip audio.Clip) Outcome {
	m.mu.Lock()
	m.clips = append(m.clips, clip)
	n := len(m.clips)
	fn := m.RecognizeFunc
	var out Outcome
	switch {
	case fn != nil:
	case len(m.outcomes) == 0:
		out = NotHeard()
	case n <= len(m.outcomes):
		out = m.outcomes[n-1]
	default:
		out = m.outcomes[len(m.outcomes)-1]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, clip)
	}
	return out
}

// CallCount returns the number of Recognize calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clips)
}

// Clips returns every clip passed to Recognize.
func (m *Mock) Clips() []audio.Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audio.Clip, len(m.clips))
	copy(out, m.clips)
	return out
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clips = nil
}

var _ Recognizer = (*Mock)(nil)
