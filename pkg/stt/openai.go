package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-voiceqa/internal/httpc"
	"github.com/teslashibe/go-voiceqa/pkg/audio"
)

const providerOpenAI = "openai"

// OpenAI implements Recognizer using the Whisper transcription endpoint.
type OpenAI struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewOpenAI creates a new Whisper recognizer.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	return &OpenAI{
		config: cfg,
		client: httpc.NewClient(cfg.Timeout),
		logger: cfg.Logger.With("component", "stt.openai"),
	}, nil
}

// Recognize uploads the clip as WAV and classifies the response.
func (o *OpenAI) Recognize(ctx context.Context, clip audio.Clip) Outcome {
	if clip.Empty() {
		return NotHeard()
	}

	text, err := o.transcribe(ctx, clip)
	if err != nil {
		o.logger.Warn("transcription failed", "error", err)
		return Failed(err)
	}
	return Heard(text)
}

func (o *OpenAI) transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	start := time.Now()

	var body bytes.Buffer
	contentType, err := writeForm(&body, clip.WAV(), o.config.Model, o.config.Language)
	if err != nil {
		return "", WrapError(providerOpenAI, err)
	}

	url := strings.TrimRight(o.config.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", WrapError(providerOpenAI, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", WrapError(providerOpenAI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseError(providerOpenAI, resp)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", WrapError(providerOpenAI, fmt.Errorf("decode response: %w", err))
	}

	o.logger.Debug("transcribed audio",
		"audio_ms", clip.Duration().Milliseconds(),
		"chars", len(result.Text),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return strings.TrimSpace(result.Text), nil
}

// Close releases idle connections.
func (o *OpenAI) Close() error {
	o.client.CloseIdleConnections()
	return nil
}

func parseError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := string(body)
	code := ""
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		code = errResp.Error.Code
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Code:       code,
		Provider:   provider,
	}
}

var _ Recognizer = (*OpenAI)(nil)

// writeForm encodes a transcription request as multipart/form-data and
// returns its content type.
func writeForm(w io.Writer, wav []byte, model, language string) (string, error) {
	mw := multipart.NewWriter(w)

	part, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("form file: %w", err)
	}

	fields := [][2]string{{"model", model}, {"response_format", "json"}}
	if language != "" {
		fields = append(fields, [2]string{"language", language})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("form field %s: %w", f[0], err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("form close: %w", err)
	}
	return mw.FormDataContentType(), nil
}
