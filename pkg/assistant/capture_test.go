package assistant_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/teslashibe/go-voiceqa/pkg/assistant"
	"github.com/teslashibe/go-voiceqa/pkg/audio"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
	"github.com/teslashibe/go-voiceqa/pkg/stt"
	"github.com/teslashibe/go-voiceqa/pkg/tts"
)

type captureFixture struct {
	out      *bytes.Buffer
	listener *audio.FakeListener
	speaker  *tts.MockSpeaker
	recorder *metrics.Recorder
	capturer *assistant.Capturer
	attempts []assistant.Attempt
}

func newCaptureFixture(rec stt.Recognizer) *captureFixture {
	f := &captureFixture{
		out:      &bytes.Buffer{},
		listener: &audio.FakeListener{},
		speaker:  &tts.MockSpeaker{},
		recorder: metrics.NewRecorder(),
	}
	f.capturer = assistant.NewCapturer(testConfig(f.out), f.listener, rec, f.speaker, f.recorder)
	f.capturer.OnAttempt(func(a assistant.Attempt) { f.attempts = append(f.attempts, a) })
	return f
}

func countSaid(said []string, text string) int {
	n := 0
	for _, s := range said {
		if s == text {
			n++
		}
	}
	return n
}

func TestCapture(t *testing.T) {
	ctx := context.Background()

	t.Run("recognized on first attempt", func(t *testing.T) {
		rec := stt.Script("What is the capital of France?")
		f := newCaptureFixture(rec)

		text, ok := f.capturer.Capture(ctx, assistant.QuestionPrompt, 3)
		if !ok || text != "What is the capital of France?" {
			t.Fatalf("Capture() = %q, %v", text, ok)
		}
		if rec.CallCount() != 1 || f.listener.Calls() != 1 {
			t.Errorf("recognize=%d listen=%d", rec.CallCount(), f.listener.Calls())
		}
		if said := f.speaker.Said(); len(said) != 1 || said[0] != assistant.QuestionPrompt {
			t.Errorf("said = %v", said)
		}
		if snap := f.recorder.Snapshot(); len(snap.Memory) != 1 || snap.Memory[0] != testMemoryMB {
			t.Errorf("memory = %v", snap.Memory)
		}
		if !strings.Contains(f.out.String(), "Text heard: What is the capital of France?") {
			t.Errorf("out = %q", f.out.String())
		}
		if len(f.attempts) != 1 || f.attempts[0].Index != 1 {
			t.Errorf("attempts = %+v", f.attempts)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		rec := stt.NewMock(stt.NotHeard())
		f := newCaptureFixture(rec)

		text, ok := f.capturer.Capture(ctx, assistant.FeedbackPrompt, 3)
		if ok || text != "" {
			t.Fatalf("Capture() = %q, %v", text, ok)
		}
		if rec.CallCount() != 3 {
			t.Errorf("recognize calls = %d, want 3", rec.CallCount())
		}
		if f.listener.Calls() != 3 {
			t.Errorf("listen calls = %d, want 3", f.listener.Calls())
		}
		if n := countSaid(f.speaker.Said(), assistant.RetryPrompt); n != 2 {
			t.Errorf("retry prompt spoken %d times, want 2", n)
		}
		if got := len(f.recorder.Snapshot().Memory); got != 3 {
			t.Errorf("memory samples = %d, want 3", got)
		}
		if !strings.Contains(f.out.String(), "Failed to capture speech after multiple attempts.") {
			t.Errorf("out = %q", f.out.String())
		}
	})

	t.Run("retry then recognized", func(t *testing.T) {
		rec := stt.Script("", "yes")
		f := newCaptureFixture(rec)

		text, ok := f.capturer.Capture(ctx, assistant.FeedbackPrompt, 3)
		if !ok || text != "yes" {
			t.Fatalf("Capture() = %q, %v", text, ok)
		}
		if rec.CallCount() != 2 || f.listener.Calls() != 2 {
			t.Errorf("recognize=%d listen=%d", rec.CallCount(), f.listener.Calls())
		}
		if len(f.attempts) != 2 || f.attempts[1].Index != 2 {
			t.Errorf("attempts = %+v", f.attempts)
		}
	})

	t.Run("service error stops immediately", func(t *testing.T) {
		rec := stt.NewMock(stt.Failed(errors.New("503")))
		f := newCaptureFixture(rec)

		if _, ok := f.capturer.Capture(ctx, assistant.QuestionPrompt, 3); ok {
			t.Fatal("expected no result")
		}
		if rec.CallCount() != 1 || f.listener.Calls() != 1 {
			t.Errorf("recognize=%d listen=%d", rec.CallCount(), f.listener.Calls())
		}
		if countSaid(f.speaker.Said(), assistant.RetryPrompt) != 0 {
			t.Error("retry prompt should not be spoken on service error")
		}
	})

	t.Run("listen error is a service error", func(t *testing.T) {
		rec := stt.Script("never")
		f := newCaptureFixture(rec)
		f.listener.Err = errors.New("no microphone")

		if _, ok := f.capturer.Capture(ctx, assistant.QuestionPrompt, 3); ok {
			t.Fatal("expected no result")
		}
		if rec.CallCount() != 0 {
			t.Errorf("recognizer called %d times", rec.CallCount())
		}
		if len(f.attempts) != 1 || f.attempts[0].Outcome.Kind != stt.ServiceError {
			t.Errorf("attempts = %+v", f.attempts)
		}
	})

	t.Run("silence is retried", func(t *testing.T) {
		rec := stt.Script("never")
		f := newCaptureFixture(rec)
		f.listener.Err = audio.ErrNoSpeech

		if _, ok := f.capturer.Capture(ctx, assistant.QuestionPrompt, 3); ok {
			t.Fatal("expected no result")
		}
		if rec.CallCount() != 0 {
			t.Errorf("recognizer called %d times", rec.CallCount())
		}
		if len(f.attempts) != 3 || f.listener.Calls() != 3 {
			t.Fatalf("attempts=%d listen=%d, want 3", len(f.attempts), f.listener.Calls())
		}
		for _, a := range f.attempts {
			if a.Outcome.Kind != stt.Unrecognized {
				t.Errorf("attempt %d kind = %v", a.Index, a.Outcome.Kind)
			}
		}
		if n := countSaid(f.speaker.Said(), assistant.RetryPrompt); n != 2 {
			t.Errorf("retry prompts = %d, want 2", n)
		}
		if strings.Contains(f.out.String(), "Could not request results") {
			t.Errorf("silence reported as service failure: %q", f.out.String())
		}
		if !strings.Contains(f.out.String(), "Failed to capture speech after multiple attempts.") {
			t.Errorf("out = %q", f.out.String())
		}
	})

	t.Run("exit is ordinary text", func(t *testing.T) {
		f := newCaptureFixture(stt.Script("Exit"))
		text, ok := f.capturer.Capture(ctx, assistant.QuestionPrompt, 3)
		if !ok || text != "Exit" {
			t.Errorf("Capture() = %q, %v", text, ok)
		}
	})

	t.Run("speak errors are ignored", func(t *testing.T) {
		f := newCaptureFixture(stt.Script("hello"))
		f.speaker.Err = errors.New("no speaker")
		if text, ok := f.capturer.Capture(ctx, assistant.QuestionPrompt, 3); !ok || text != "hello" {
			t.Errorf("Capture() = %q, %v", text, ok)
		}
	})
}

func TestCaptureAttemptBound(t *testing.T) {
	for _, retries := range []int{1, 2, 5} {
		rec := stt.NewMock(stt.NotHeard())
		f := newCaptureFixture(rec)
		f.capturer.Capture(context.Background(), assistant.QuestionPrompt, retries)
		if rec.CallCount() != retries {
			t.Errorf("retries=%d: recognize calls = %d", retries, rec.CallCount())
		}
	}
}
