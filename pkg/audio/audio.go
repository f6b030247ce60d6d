// Package audio provides microphone capture and speaker playback for the
// voice assistant, backed by miniaudio through malgo.
//
// All audio is signed 16-bit little-endian PCM.
package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// WAVHeaderSize is the size of the canonical RIFF/WAVE header written by Clip.WAV.
const WAVHeaderSize = 44

const bytesPerSample = 2

// Format describes a PCM16 stream.
type Format struct {
	SampleRate uint32
	Channels   uint32
}

// Common formats.
var (
	// Speech is what recognizers expect: 16kHz mono.
	Speech = Format{SampleRate: 16000, Channels: 1}

	// TTS matches OpenAI's raw pcm output: 24kHz mono.
	TTS = Format{SampleRate: 24000, Channels: 1}
)

// BytesPerSecond returns the byte rate of the format.
func (f Format) BytesPerSecond() int {
	return int(f.SampleRate) * int(f.Channels) * bytesPerSample
}

// BytesFor returns the number of bytes covering d, rounded down to a whole frame.
func (f Format) BytesFor(d time.Duration) int {
	n := int(float64(f.BytesPerSecond()) * d.Seconds())
	frame := int(f.Channels) * bytesPerSample
	return n - n%frame
}

// Clip is one captured utterance.
type Clip struct {
	PCM    []byte
	Format Format
}

// Empty reports whether the clip holds no audio.
func (c Clip) Empty() bool {
	return len(c.PCM) == 0
}

// Duration returns the playback length of the clip.
func (c Clip) Duration() time.Duration {
	bps := c.Format.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(len(c.PCM)) * time.Second / time.Duration(bps)
}

// WAV wraps the clip in a RIFF/WAVE container.
func (c Clip) WAV() []byte {
	var buf bytes.Buffer
	buf.Grow(WAVHeaderSize + len(c.PCM))

	dataLen := uint32(len(c.PCM))
	blockAlign := uint16(c.Format.Channels) * bytesPerSample

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(c.Format.Channels))
	binary.Write(&buf, binary.LittleEndian, c.Format.SampleRate)
	binary.Write(&buf, binary.LittleEndian, uint32(c.Format.BytesPerSecond()))
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(c.PCM)

	return buf.Bytes()
}

// RMS returns the root-mean-square amplitude of a PCM16 buffer.
func RMS(pcm []byte) float64 {
	n := len(pcm) / bytesPerSample
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

// Scale multiplies every sample by gain, clipping to the int16 range.
// A new buffer is returned; the input is untouched.
func Scale(pcm []byte, gain float64) []byte {
	out := make([]byte, len(pcm)-len(pcm)%bytesPerSample)
	for i := 0; i+1 < len(pcm); i += bytesPerSample {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i:]))) * gain
		if s > math.MaxInt16 {
			s = math.MaxInt16
		} else if s < math.MinInt16 {
			s = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i:], uint16(int16(s)))
	}
	return out
}
