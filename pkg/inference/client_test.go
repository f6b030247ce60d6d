package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientChat(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Expected Bearer test-key, got %s", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-3.5-turbo",
			"choices": [{"message": {"role": "assistant", "content": "  Paris.  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(
		WithBaseURL(server.URL+"/"),
		WithAPIKey("test-key"),
	)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages:    []Message{NewUserMessage("What is the capital of France?")},
		MaxTokens:   50,
		Temperature: Temperature(0.5),
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Message.Content != "  Paris.  " {
		t.Errorf("Unexpected content: %q", resp.Message.Content)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Errorf("Expected 12 tokens, got %d", resp.Usage.TotalTokens)
	}

	if got["model"] != "gpt-3.5-turbo" {
		t.Errorf("Expected default model, got %v", got["model"])
	}
	if got["max_tokens"] != float64(50) {
		t.Errorf("Expected max_tokens 50, got %v", got["max_tokens"])
	}
	if got["temperature"] != 0.5 {
		t.Errorf("Expected temperature 0.5, got %v", got["temperature"])
	}
	msgs, _ := got["messages"].([]interface{})
	if len(msgs) != 1 {
		t.Fatalf("Expected one message, got %v", got["messages"])
	}
}

func TestClientChatSendsZeroTemperature(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices": [{"message": {"content": "neutral"}}]}`))
	}))
	defer server.Close()

	client, _ := NewClient(WithBaseURL(server.URL))
	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages:    []Message{NewUserMessage("ok")},
		Temperature: Temperature(0),
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	temp, ok := got["temperature"]
	if !ok {
		t.Fatal("Expected explicit temperature in payload")
	}
	if temp != float64(0) {
		t.Errorf("Expected temperature 0, got %v", temp)
	}
}

func TestClientChatOmitsUnsetTemperature(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices": [{"message": {"content": "hi"}}]}`))
	}))
	defer server.Close()

	client, _ := NewClient(WithBaseURL(server.URL))
	if _, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("hi")},
		Model:    "ft:model-x",
	}); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if _, ok := got["temperature"]; ok {
		t.Error("temperature should be omitted when unset")
	}
	if got["model"] != "ft:model-x" {
		t.Errorf("Expected model override, got %v", got["model"])
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  int
		wantNoAPI bool
	}{
		{"unauthorized", 401, `{"error": {"message": "Invalid API key", "code": "invalid_api_key"}}`, 401, false},
		{"rate limited", 429, `{"error": {"message": "Rate limit"}}`, 429, false},
		{"plain body", 500, `upstream exploded`, 500, false},
		{"no choices", 200, `{"choices": []}`, 0, true},
		{"malformed", 200, `{not json`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewClient(WithBaseURL(server.URL))
			_, err := client.Chat(context.Background(), &ChatRequest{
				Messages: []Message{NewUserMessage("Hello")},
			})
			if err == nil {
				t.Fatal("Expected error")
			}

			var apiErr *APIError
			isAPI := errors.As(err, &apiErr)
			if tt.wantNoAPI {
				if isAPI {
					t.Errorf("Expected non-API error, got %v", err)
				}
				var provErr *ProviderError
				if !errors.As(err, &provErr) {
					t.Errorf("Expected ProviderError, got %T", err)
				}
				return
			}
			if !isAPI {
				t.Fatalf("Expected APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, apiErr.StatusCode)
			}
		})
	}
}

func TestClientRetry(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(503)
			return
		}
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	t.Run("no retry by default", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		client, _ := NewClient(WithBaseURL(server.URL))
		_, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{NewUserMessage("x")}})
		if err == nil {
			t.Fatal("Expected error without retries")
		}
		if n := atomic.LoadInt32(&hits); n != 1 {
			t.Errorf("Expected 1 request, got %d", n)
		}
	})

	t.Run("retries when configured", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		client, _ := NewClient(WithBaseURL(server.URL), WithRetry(3, time.Millisecond))
		resp, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{NewUserMessage("x")}})
		if err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		if resp.Message.Content != "ok" {
			t.Errorf("Unexpected content %q", resp.Message.Content)
		}
		if n := atomic.LoadInt32(&hits); n != 3 {
			t.Errorf("Expected 3 requests, got %d", n)
		}
	})
}

func TestNewClientRequiresModel(t *testing.T) {
	if _, err := NewClient(WithModel("")); !errors.Is(err, ErrNoModel) {
		t.Errorf("Expected ErrNoModel, got %v", err)
	}
}

func TestAPIErrorHelpers(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
		unauth    bool
	}{
		{401, false, true},
		{429, true, false},
		{500, true, false},
		{400, false, false},
	}
	for _, tt := range tests {
		e := &APIError{StatusCode: tt.code, Provider: "openai"}
		if e.IsRetryable() != tt.retryable {
			t.Errorf("%d: IsRetryable = %v", tt.code, e.IsRetryable())
		}
		if e.IsUnauthorized() != tt.unauth {
			t.Errorf("%d: IsUnauthorized = %v", tt.code, e.IsUnauthorized())
		}
	}
}
