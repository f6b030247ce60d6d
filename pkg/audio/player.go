package audio

import (
	"context"
	"fmt"
	"sync"
)

// DefaultVolume is applied to every clip before playback.
const DefaultVolume = 0.9

// Player plays PCM16 buffers on a Sink, one at a time.
type Player struct {
	sink   Sink
	volume float64

	// Callbacks
	OnPlaybackStart func()
	OnPlaybackEnd   func()

	mu       sync.Mutex
	speaking bool
}

// NewPlayer creates a player on sink at DefaultVolume.
func NewPlayer(sink Sink) *Player {
	return &Player{sink: sink, volume: DefaultVolume}
}

// SetVolume sets the playback gain, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
}

// IsSpeaking reports whether a clip is currently playing.
func (p *Player) IsSpeaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}

// Play blocks until pcm has been fully handed to the device or ctx is done.
func (p *Player) Play(ctx context.Context, pcm []byte, f Format) error {
	if len(pcm) == 0 {
		return nil
	}

	p.mu.Lock()
	data := Scale(pcm, p.volume)
	p.speaking = true
	p.mu.Unlock()

	if p.OnPlaybackStart != nil {
		p.OnPlaybackStart()
	}
	defer func() {
		p.mu.Lock()
		p.speaking = false
		p.mu.Unlock()
		if p.OnPlaybackEnd != nil {
			p.OnPlaybackEnd()
		}
	}()

	var (
		offset  int
		posMu   sync.Mutex
		drained = make(chan struct{})
		once    sync.Once
	)

	dev, err := p.sink.OpenPlayback(f, func(out []byte) int {
		posMu.Lock()
		defer posMu.Unlock()
		n := copy(out, data[offset:])
		offset += n
		if offset >= len(data) {
			once.Do(func() { close(drained) })
		}
		return n
	})
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.Start(); err != nil {
		return fmt.Errorf("audio: start playback: %w", err)
	}
	defer dev.Stop()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
