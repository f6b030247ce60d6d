// Package inference is a chat-completion client for OpenAI-compatible APIs.
//
// The assistant uses it to answer questions and classify feedback; the
// fine-tuning pipeline uses it once to exercise the trained model.
//
//	client, _ := inference.NewClient(inference.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	defer client.Close()
//
//	resp, _ := client.Chat(ctx, &inference.ChatRequest{
//	    Messages:    []inference.Message{inference.NewUserMessage("Hello!")},
//	    MaxTokens:   50,
//	    Temperature: inference.Temperature(0.5),
//	})
package inference

import "context"

// Provider generates chat completions.
type Provider interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func NewSystemMessage(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func NewUserMessage(content string) Message      { return Message{Role: RoleUser, Content: content} }
func NewAssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// ChatRequest is a single completion call.
type ChatRequest struct {
	Messages []Message

	// Model overrides the client's default model.
	Model string

	// MaxTokens limits the reply. Zero uses the client default.
	MaxTokens int

	// Temperature is nil to use the client default. A pointer to zero is
	// sent as an explicit zero.
	Temperature *float64
}

// ChatResponse is the first choice of a completion.
type ChatResponse struct {
	Message      Message
	FinishReason string
	Usage        Usage

	// Model is the model that actually served the request.
	Model     string
	LatencyMs int64
}

// Usage is the token accounting reported by the API.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Temperature returns a pointer for ChatRequest.Temperature.
func Temperature(t float64) *float64 {
	return &t
}
