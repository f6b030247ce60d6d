package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teslashibe/go-voiceqa/pkg/inference"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
)

// Sentiment classification parameters.
const (
	SentimentInstruction = "You are a helpful assistant that analyzes the sentiment of feedback. " +
		"Please respond with 'positive', 'neutral', or 'negative'."
	SentimentMaxTokens = 10
)

// SentimentClassifier labels spoken feedback as positive, neutral or negative.
type SentimentClassifier struct {
	cfg      Config
	provider inference.Provider
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewSentimentClassifier creates a classifier.
func NewSentimentClassifier(cfg Config, p inference.Provider, rec *metrics.Recorder) *SentimentClassifier {
	cfg = cfg.withDefaults()
	return &SentimentClassifier{
		cfg:      cfg,
		provider: p,
		recorder: rec,
		logger:   cfg.Logger.With("component", "assistant.sentiment"),
	}
}

// Classify returns the lower-cased label the model produced, or
// SentimentFallback on failure. Only labels containing "positive" or
// "negative" count as a success in the tally; neutral counts as zero.
func (s *SentimentClassifier) Classify(ctx context.Context, feedback string) string {
	resp, err := s.provider.Chat(ctx, &inference.ChatRequest{
		Messages: []inference.Message{
			inference.NewSystemMessage(SentimentInstruction),
			inference.NewUserMessage(fmt.Sprintf("Sentiment of the feedback: '%s'", feedback)),
		},
		Model:       s.cfg.Model,
		MaxTokens:   SentimentMaxTokens,
		Temperature: inference.Temperature(0),
	})
	if err != nil {
		fmt.Fprintf(s.cfg.Out, "Error analyzing sentiment: %v\n", err)
		s.logger.Warn("sentiment failed", "error", err)
		s.recorder.RecordSentiment(false)
		return SentimentFallback
	}

	label := strings.ToLower(strings.TrimSpace(resp.Message.Content))
	fmt.Fprintf(s.cfg.Out, "Sentiment detected: %s\n", label)
	s.logger.Debug("sentiment detected", "label", label)

	s.recorder.RecordSentiment(strings.Contains(label, "positive") || strings.Contains(label, "negative"))
	return label
}
