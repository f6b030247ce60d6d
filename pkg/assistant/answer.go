package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/go-voiceqa/pkg/inference"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
)

// Answer generation parameters.
const (
	AnswerMaxTokens   = 50
	AnswerTemperature = 0.5
)

// Answerer generates short answers to spoken questions.
type Answerer struct {
	cfg      Config
	provider inference.Provider
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewAnswerer creates an answerer.
func NewAnswerer(cfg Config, p inference.Provider, rec *metrics.Recorder) *Answerer {
	cfg = cfg.withDefaults()
	return &Answerer{
		cfg:      cfg,
		provider: p,
		recorder: rec,
		logger:   cfg.Logger.With("component", "assistant.answer"),
	}
}

// Answer returns the model's reply to question, or AnswerFallback if the
// completion fails. Exactly one answer tally entry is recorded per call;
// latency, memory and throughput are recorded only on success.
func (a *Answerer) Answer(ctx context.Context, question string) string {
	start := time.Now()

	resp, err := a.provider.Chat(ctx, &inference.ChatRequest{
		Messages:    []inference.Message{inference.NewUserMessage(question)},
		Model:       a.cfg.Model,
		MaxTokens:   AnswerMaxTokens,
		Temperature: inference.Temperature(AnswerTemperature),
	})
	if err != nil {
		fmt.Fprintf(a.cfg.Out, "Error getting answer: %v\n", err)
		a.logger.Warn("answer failed", "error", err)
		a.recorder.RecordAnswer(false)
		return AnswerFallback
	}

	a.recorder.RecordLatency(time.Since(start))
	if err := a.recorder.SampleMemory(a.cfg.Sampler); err != nil {
		a.logger.Warn("memory sample failed", "error", err)
	}

	answer := strings.TrimSpace(resp.Message.Content)
	fmt.Fprintf(a.cfg.Out, "Answer generated: %s\n", answer)
	a.logger.Debug("answer generated", "chars", len(answer), "latency_ms", time.Since(start).Milliseconds())

	a.recorder.IncThroughput()
	a.recorder.RecordAnswer(true)
	return answer
}
