package tts_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
	"github.com/teslashibe/go-voiceqa/pkg/tts"
)

func TestOpenAISynthesize(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth = %s", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write(make([]byte, 4800))
	}))
	defer srv.Close()

	p, err := tts.NewOpenAI(
		tts.WithAPIKey("sk-test"),
		tts.WithBaseURL(srv.URL+"/v1"),
		tts.WithSpeed(1.0),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	result, err := p.Synthesize(context.Background(), "Paris.")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if len(result.Audio) != 4800 || result.Format != audio.TTS {
		t.Errorf("result = %d bytes %+v", len(result.Audio), result.Format)
	}
	if result.Duration != 100*time.Millisecond {
		t.Errorf("Duration = %v", result.Duration)
	}

	if payload["response_format"] != "pcm" || payload["voice"] != tts.VoiceAlloy || payload["input"] != "Paris." {
		t.Errorf("payload = %v", payload)
	}
	if payload["model"] != tts.ModelTTS1 || payload["speed"] != 1.0 {
		t.Errorf("payload = %v", payload)
	}
}

func TestOpenAIRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, `{"error":{"message":"busy"}}`)
			return
		}
		w.Write([]byte{0, 0})
	}))
	defer srv.Close()

	p, _ := tts.NewOpenAI(
		tts.WithAPIKey("k"),
		tts.WithBaseURL(srv.URL),
		tts.WithRetry(1, time.Millisecond),
	)
	if _, err := p.Synthesize(context.Background(), "hi"); err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
}

func TestOpenAIErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":{"message":"bad key","code":"invalid_api_key"}}`)
		}))
		defer srv.Close()

		p, _ := tts.NewOpenAI(tts.WithAPIKey("k"), tts.WithBaseURL(srv.URL))
		_, err := p.Synthesize(context.Background(), "hi")

		var apiErr *tts.APIError
		if !errors.As(err, &apiErr) || !apiErr.IsUnauthorized() {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		p, _ := tts.NewOpenAI(tts.WithAPIKey("k"), tts.WithBaseURL(srv.URL))
		if _, err := p.Synthesize(context.Background(), "hi"); !errors.Is(err, tts.ErrEmptyAudio) {
			t.Errorf("err = %v, want ErrEmptyAudio", err)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		if _, err := tts.NewOpenAI(); !errors.Is(err, tts.ErrNoAPIKey) {
			t.Errorf("err = %v", err)
		}
	})
}
