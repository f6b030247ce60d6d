// Package stt provides speech-to-text recognition for captured utterances.
//
// Recognizers never return bare errors. Every call produces an Outcome that
// says whether text was recognized, the audio was unintelligible, or the
// service itself failed. Callers retry the second case and give up on the third.
//
// Example usage:
//
//	rec, err := stt.NewOpenAI(stt.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := rec.Recognize(ctx, clip)
//	if text, ok := out.Text(); ok {
//	    fmt.Println(text)
//	}
package stt

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
)

// Recognizer converts one utterance into text.
type Recognizer interface {
	Recognize(ctx context.Context, clip audio.Clip) Outcome
}

// Kind classifies a recognition outcome.
type Kind int

const (
	// Recognized means the clip produced non-empty text.
	Recognized Kind = iota

	// Unrecognized means the service answered but heard nothing usable.
	Unrecognized

	// ServiceError means the request itself failed.
	ServiceError
)

func (k Kind) String() string {
	switch k {
	case Recognized:
		return "recognized"
	case Unrecognized:
		return "unrecognized"
	case ServiceError:
		return "service_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one recognition attempt.
type Outcome struct {
	Kind Kind

	// Transcript is set when Kind is Recognized.
	Transcript string

	// Err is set when Kind is ServiceError.
	Err error
}

// Text returns the transcript and whether recognition succeeded.
func (o Outcome) Text() (string, bool) {
	return o.Transcript, o.Kind == Recognized
}

// Heard builds a Recognized outcome. Blank text is Unrecognized.
func Heard(text string) Outcome {
	if isBlank(text) {
		return NotHeard()
	}
	return Outcome{Kind: Recognized, Transcript: text}
}

// NotHeard builds an Unrecognized outcome.
func NotHeard() Outcome {
	return Outcome{Kind: Unrecognized}
}

// Failed builds a ServiceError outcome.
func Failed(err error) Outcome {
	return Outcome{Kind: ServiceError, Err: err}
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '.', ',', '!', '?':
		default:
			return false
		}
	}
	return true
}
