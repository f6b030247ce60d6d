package audio

import (
	"context"
	"sync"
	"time"
)

// FakeSource replays scripted frames instead of reading a microphone.
// Frames are delivered from a goroutine once Start is called.
type FakeSource struct {
	Frames [][]byte
	Err    error

	mu     sync.Mutex
	opened int
}

// Opened returns how many capture streams were opened.
func (s *FakeSource) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// OpenCapture implements Source.
func (s *FakeSource) OpenCapture(_ Format, onData func(pcm []byte)) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.opened++
	return &fakeDevice{start: func() {
		go func() {
			for _, f := range s.Frames {
				onData(f)
			}
		}()
	}}, nil
}

// FakeSink drains playback into memory.
type FakeSink struct {
	Err error

	// Period is the callback buffer size in bytes.
	Period int

	mu     sync.Mutex
	played []byte
}

// Played returns everything written to the sink.
func (s *FakeSink) Played() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.played))
	copy(out, s.played)
	return out
}

// OpenPlayback implements Sink.
func (s *FakeSink) OpenPlayback(_ Format, fill func(out []byte) int) (Device, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	period := s.Period
	if period <= 0 {
		period = 960
	}
	return &fakeDevice{start: func() {
		go func() {
			buf := make([]byte, period)
			for {
				n := fill(buf)
				s.mu.Lock()
				s.played = append(s.played, buf[:n]...)
				s.mu.Unlock()
				if n < period {
					return
				}
			}
		}()
	}}, nil
}

type fakeDevice struct {
	start func()
}

func (d *fakeDevice) Start() error {
	d.start()
	return nil
}

func (d *fakeDevice) Stop()  {}
func (d *fakeDevice) Close() {}

// FakeListener hands out a short silent clip per Listen call without
// touching any device.
type FakeListener struct {
	// Err, if set, is returned from every call.
	Err error

	mu    sync.Mutex
	calls int
}

// Listen returns a 20ms clip or Err. A done context wins over both.
func (f *FakeListener) Listen(ctx context.Context) (Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}
	if f.Err != nil {
		return Clip{}, f.Err
	}
	return Clip{PCM: make([]byte, Speech.BytesFor(20*time.Millisecond)), Format: Speech}, nil
}

// Calls returns the number of Listen calls.
func (f *FakeListener) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
