package assistant_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/teslashibe/go-voiceqa/internal/log"
	"github.com/teslashibe/go-voiceqa/pkg/assistant"
	"github.com/teslashibe/go-voiceqa/pkg/audio"
	"github.com/teslashibe/go-voiceqa/pkg/inference"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
	"github.com/teslashibe/go-voiceqa/pkg/stt"
	"github.com/teslashibe/go-voiceqa/pkg/tts"
)

const testMemoryMB = 42.5

func testConfig(out *bytes.Buffer) assistant.Config {
	return assistant.Config{
		Model:   "gpt-3.5-turbo",
		Retries: 3,
		Pause:   0,
		Out:     out,
		Logger:  log.Discard(),
		Sampler: metrics.StaticSampler(testMemoryMB),
	}
}

// routedChat answers sentiment requests (which carry a system message)
// with sentiment and everything else with answer.
func routedChat(answer, sentiment string) *inference.Mock {
	return &inference.Mock{
		ChatFunc: func(ctx context.Context, req *inference.ChatRequest) (*inference.ChatResponse, error) {
			content := answer
			if len(req.Messages) > 0 && req.Messages[0].Role == inference.RoleSystem {
				content = sentiment
			}
			return &inference.ChatResponse{Message: inference.NewAssistantMessage(content)}, nil
		},
	}
}

type session struct {
	out      *bytes.Buffer
	listener *audio.FakeListener
	rec      *stt.Mock
	chat     *inference.Mock
	speaker  *tts.MockSpeaker
	recorder *metrics.Recorder
	loop     *assistant.Loop

	mu     sync.Mutex
	events []assistant.Event
}

func newSession(t *testing.T, rec *stt.Mock, chat *inference.Mock, opts ...func(*assistant.Config)) *session {
	t.Helper()
	s := &session{
		out:      &bytes.Buffer{},
		listener: &audio.FakeListener{},
		rec:      rec,
		chat:     chat,
		speaker:  &tts.MockSpeaker{},
		recorder: metrics.NewRecorder(),
	}
	cfg := testConfig(s.out)
	for _, opt := range opts {
		opt(&cfg)
	}
	s.loop = assistant.NewLoop(cfg,
		assistant.NewCapturer(cfg, s.listener, rec, s.speaker, s.recorder),
		assistant.NewAnswerer(cfg, chat, s.recorder),
		assistant.NewSentimentClassifier(cfg, chat, s.recorder),
		s.speaker,
		s.recorder,
	)
	s.loop.SetObserver(func(e assistant.Event) {
		s.mu.Lock()
		s.events = append(s.events, e)
		s.mu.Unlock()
	})
	return s
}

func (s *session) eventsOf(kind assistant.EventKind) []assistant.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []assistant.Event
	for _, e := range s.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
