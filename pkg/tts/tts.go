// Package tts turns text into speech.
//
// A Provider synthesizes raw PCM16 audio; a Speaker combines a Provider with
// an audio player so callers can simply say things out loud.
//
// Example usage:
//
//	provider, _ := tts.NewOpenAI(
//	    tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    tts.WithVoice(tts.VoiceAlloy),
//	)
//	defer provider.Close()
//
//	speaker := tts.NewSpeaker(provider, audio.NewPlayer(actx))
//	_ = speaker.Speak(ctx, "Hello world")
package tts

import (
	"context"
	"time"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
)

// Provider synthesizes a whole utterance at once.
type Provider interface {
	Synthesize(ctx context.Context, text string) (*AudioResult, error)
}

// AudioResult is one synthesized utterance.
type AudioResult struct {
	// Audio is raw little-endian PCM16.
	Audio []byte

	Format audio.Format

	// Duration is the playback length of Audio.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the request round trip in milliseconds.
	LatencyMs int64
}
