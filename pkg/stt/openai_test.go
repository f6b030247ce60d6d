package stt_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
	"github.com/teslashibe/go-voiceqa/pkg/stt"
)

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := stt.NewOpenAI(); !errors.Is(err, stt.ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestOpenAIRecognize(t *testing.T) {
	clip := audio.Clip{PCM: make([]byte, 3200), Format: audio.Speech}

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind stt.Kind
		wantText string
	}{
		{"recognized", http.StatusOK, `{"text":" Hello there. "}`, stt.Recognized, "Hello there."},
		{"empty transcript", http.StatusOK, `{"text":""}`, stt.Unrecognized, ""},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"overloaded"}}`, stt.ServiceError, ""},
		{"bad json", http.StatusOK, `not json`, stt.ServiceError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotModel, gotLang, gotAuth, gotPath string
			var gotFile []byte

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				if err := r.ParseMultipartForm(1 << 20); err == nil {
					gotModel = r.FormValue("model")
					gotLang = r.FormValue("language")
					if f, _, err := r.FormFile("file"); err == nil {
						gotFile, _ = io.ReadAll(f)
						f.Close()
					}
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			rec, err := stt.NewOpenAI(
				stt.WithAPIKey("sk-test"),
				stt.WithBaseURL(srv.URL+"/v1"),
			)
			if err != nil {
				t.Fatal(err)
			}
			defer rec.Close()

			out := rec.Recognize(context.Background(), clip)
			if out.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v (err %v)", out.Kind, tt.wantKind, out.Err)
			}
			if out.Transcript != tt.wantText {
				t.Errorf("Transcript = %q, want %q", out.Transcript, tt.wantText)
			}

			if gotPath != "/v1/audio/transcriptions" {
				t.Errorf("path = %q", gotPath)
			}
			if gotAuth != "Bearer sk-test" {
				t.Errorf("auth = %q", gotAuth)
			}
			if gotModel != "whisper-1" || gotLang != "en" {
				t.Errorf("model=%q language=%q", gotModel, gotLang)
			}
			if len(gotFile) != audio.WAVHeaderSize+len(clip.PCM) || string(gotFile[:4]) != "RIFF" {
				t.Errorf("uploaded file is not the WAV clip (%d bytes)", len(gotFile))
			}
		})
	}
}

func TestOpenAIAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	rec, _ := stt.NewOpenAI(stt.WithAPIKey("x"), stt.WithBaseURL(srv.URL))
	out := rec.Recognize(context.Background(), audio.Clip{PCM: []byte{0, 0}, Format: audio.Speech})

	var apiErr *stt.APIError
	if !errors.As(out.Err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", out.Err)
	}
	if !apiErr.IsUnauthorized() || apiErr.Code != "invalid_api_key" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestOpenAIEmptyClip(t *testing.T) {
	rec, _ := stt.NewOpenAI(stt.WithAPIKey("x"), stt.WithBaseURL("http://127.0.0.1:1"))
	if out := rec.Recognize(context.Background(), audio.Clip{}); out.Kind != stt.Unrecognized {
		t.Errorf("Kind = %v", out.Kind)
	}
}
