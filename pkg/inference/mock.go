package inference

import (
	"context"
	"sync"
)

// Mock is a scripted Provider that records every request.
type Mock struct {
	// ChatFunc answers each call. A nil ChatFunc fails with ErrProviderUnavailable.
	ChatFunc func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	mu       sync.Mutex
	requests []*ChatRequest
}

// NewMock answers every chat with "Mock response".
func NewMock() *Mock {
	return Reply("Mock response")
}

// Reply answers every chat with content.
func Reply(content string) *Mock {
	return &Mock{
		ChatFunc: func(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
			return &ChatResponse{
				Message:      NewAssistantMessage(content),
				FinishReason: "stop",
				Model:        req.Model,
			}, nil
		},
	}
}

// WithError fails every chat with err.
func WithError(err error) *Mock {
	return &Mock{
		ChatFunc: func(context.Context, *ChatRequest) (*ChatResponse, error) {
			return nil, err
		},
	}
}

func (m *Mock) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, WrapError("mock", ErrProviderUnavailable)
	}
	return fn(ctx, req)
}

// CallCount returns how many times method was called. Only "Chat" is tracked.
func (m *Mock) CallCount(method string) int {
	if method != "Chat" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns every request received, oldest first.
func (m *Mock) Requests() []*ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*ChatRequest(nil), m.requests...)
}

// LastRequest returns the most recent request, or nil.
func (m *Mock) LastRequest() *ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Reset forgets recorded requests.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.requests = nil
	m.mu.Unlock()
}

var _ Provider = (*Mock)(nil)
