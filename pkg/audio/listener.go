package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoSpeech is returned when nothing above the threshold is heard before StartTimeout.
var ErrNoSpeech = errors.New("audio: no speech detected")

// ListenConfig controls utterance endpointing.
type ListenConfig struct {
	Format Format

	// Threshold is the RMS level that counts as speech.
	Threshold float64

	// StartTimeout bounds the wait for speech to begin.
	StartTimeout time.Duration

	// TrailingSilence ends the utterance once speech has started.
	TrailingSilence time.Duration

	// MaxDuration caps a single utterance.
	MaxDuration time.Duration
}

// DefaultListenConfig returns settings tuned for a laptop microphone.
func DefaultListenConfig() ListenConfig {
	return ListenConfig{
		Format:          Speech,
		Threshold:       500,
		StartTimeout:    8 * time.Second,
		TrailingSilence: time.Second,
		MaxDuration:     15 * time.Second,
	}
}

// Endpointer decides where an utterance starts and ends from a stream of
// PCM frames. It holds no device state and is driven by Feed.
type Endpointer struct {
	cfg ListenConfig

	started bool
	waited  int
	silence int
	buf     []byte
}

// NewEndpointer creates an endpointer for cfg.
func NewEndpointer(cfg ListenConfig) *Endpointer {
	return &Endpointer{cfg: cfg}
}

// Started reports whether speech has been detected.
func (e *Endpointer) Started() bool {
	return e.started
}

// Feed consumes one frame and reports whether the utterance is complete.
// Frames before speech onset are discarded.
func (e *Endpointer) Feed(pcm []byte) (done bool) {
	f := e.cfg.Format
	loud := RMS(pcm) >= e.cfg.Threshold

	if !e.started {
		if !loud {
			e.waited += len(pcm)
			return false
		}
		e.started = true
	}

	e.buf = append(e.buf, pcm...)
	if loud {
		e.silence = 0
	} else {
		e.silence += len(pcm)
	}

	if e.cfg.TrailingSilence > 0 && e.silence >= f.BytesFor(e.cfg.TrailingSilence) {
		return true
	}
	if e.cfg.MaxDuration > 0 && len(e.buf) >= f.BytesFor(e.cfg.MaxDuration) {
		return true
	}
	return false
}

// TimedOut reports whether StartTimeout elapsed (in audio time) without speech.
func (e *Endpointer) TimedOut() bool {
	return !e.started && e.cfg.StartTimeout > 0 && e.waited >= e.cfg.Format.BytesFor(e.cfg.StartTimeout)
}

// Clip returns the captured utterance with trailing silence trimmed.
func (e *Endpointer) Clip() Clip {
	pcm := e.buf
	if trim := e.silence; trim > 0 && trim <= len(pcm) {
		pcm = pcm[:len(pcm)-trim]
	}
	out := make([]byte, len(pcm))
	copy(out, pcm)
	return Clip{PCM: out, Format: e.cfg.Format}
}

// Listener records one utterance at a time from a Source.
type Listener struct {
	src Source
	cfg ListenConfig

	mu sync.Mutex
}

// NewListener creates a listener on src.
func NewListener(src Source, cfg ListenConfig) *Listener {
	if cfg.Format.SampleRate == 0 {
		cfg.Format = Speech
	}
	return &Listener{src: src, cfg: cfg}
}

// Listen opens the microphone, waits for speech and returns the utterance.
// It returns ErrNoSpeech if StartTimeout passes in silence.
func (l *Listener) Listen(ctx context.Context) (Clip, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	frames := make(chan []byte, 256)
	dev, err := l.src.OpenCapture(l.cfg.Format, func(pcm []byte) {
		frame := make([]byte, len(pcm))
		copy(frame, pcm)
		select {
		case frames <- frame:
		default:
		}
	})
	if err != nil {
		return Clip{}, err
	}
	defer dev.Close()

	if err := dev.Start(); err != nil {
		return Clip{}, fmt.Errorf("audio: start capture: %w", err)
	}
	defer dev.Stop()

	ep := NewEndpointer(l.cfg)
	for {
		select {
		case <-ctx.Done():
			return Clip{}, ctx.Err()
		case frame := <-frames:
			if ep.Feed(frame) {
				return ep.Clip(), nil
			}
			if ep.TimedOut() {
				return Clip{}, ErrNoSpeech
			}
		}
	}
}
