package audio

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

// Device is an opened capture or playback stream.
type Device interface {
	Start() error
	Stop()
	Close()
}

// Source opens capture streams. The callback receives raw PCM16 frames
// on the audio thread and must not block.
type Source interface {
	OpenCapture(f Format, onData func(pcm []byte)) (Device, error)
}

// Sink opens playback streams. fill is called on the audio thread to
// populate out and returns the number of bytes written.
type Sink interface {
	OpenPlayback(f Format, fill func(out []byte) int) (Device, error)
}

// Context owns the miniaudio context and implements both Source and Sink.
type Context struct {
	ctx *malgo.AllocatedContext
}

// NewContext initializes the default audio backend.
func NewContext() (*Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: init context: %w", err)
	}
	return &Context{ctx: ctx}, nil
}

// OpenCapture opens the default microphone.
func (c *Context) OpenCapture(f Format, onData func(pcm []byte)) (Device, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = f.Channels
	cfg.SampleRate = f.SampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			onData(input)
		},
	}

	dev, err := malgo.InitDevice(c.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("audio: open capture: %w", err)
	}
	return &malgoDevice{device: dev}, nil
}

// OpenPlayback opens the default speaker.
func (c *Context) OpenPlayback(f Format, fill func(out []byte) int) (Device, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = f.Channels
	cfg.SampleRate = f.SampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, _ uint32) {
			n := fill(output)
			for i := n; i < len(output); i++ {
				output[i] = 0
			}
		},
	}

	dev, err := malgo.InitDevice(c.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("audio: open playback: %w", err)
	}
	return &malgoDevice{device: dev}, nil
}

// Close releases the backend.
func (c *Context) Close() {
	_ = c.ctx.Uninit()
	c.ctx.Free()
}

type malgoDevice struct {
	device *malgo.Device
}

func (d *malgoDevice) Start() error {
	return d.device.Start()
}

func (d *malgoDevice) Stop() {
	_ = d.device.Stop()
}

func (d *malgoDevice) Close() {
	d.device.Uninit()
}

var (
	_ Source = (*Context)(nil)
	_ Sink   = (*Context)(nil)
)
