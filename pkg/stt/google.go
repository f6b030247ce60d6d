package stt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/teslashibe/go-voiceqa/pkg/audio"
)

const providerGoogle = "google"

// Google implements Recognizer using Cloud Speech-to-Text v1.
//
// Credentials come from the API key if one is configured, otherwise from
// Application Default Credentials.
type Google struct {
	config *Config
	client *speech.Client
	logger *slog.Logger

	recognize func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)
}

// NewGoogle dials the Speech API.
func NewGoogle(ctx context.Context, opts ...Option) (*Google, error) {
	cfg := DefaultConfig()
	cfg.Model = ""
	cfg.Apply(opts...)

	var clientOpts []option.ClientOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}

	client, err := speech.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, WrapError(providerGoogle, fmt.Errorf("create speech client: %w", err))
	}

	g := &Google{
		config: cfg,
		client: client,
		logger: cfg.Logger.With("component", "stt.google"),
	}
	g.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}
	return g, nil
}

// Recognize sends the clip as LINEAR16 and joins the top alternatives.
func (g *Google) Recognize(ctx context.Context, clip audio.Clip) Outcome {
	if clip.Empty() {
		return NotHeard()
	}

	resp, err := g.recognize(ctx, g.request(clip))
	if err != nil {
		g.logger.Warn("recognize failed", "error", err)
		return Failed(WrapError(providerGoogle, err))
	}

	var parts []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		parts = append(parts, strings.TrimSpace(alts[0].GetTranscript()))
	}

	return Heard(strings.Join(parts, " "))
}

func (g *Google) request(clip audio.Clip) *speechpb.RecognizeRequest {
	cfg := &speechpb.RecognitionConfig{
		Encoding:          speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:   int32(clip.Format.SampleRate),
		AudioChannelCount: int32(clip.Format.Channels),
		LanguageCode:      languageTag(g.config.Language),
	}
	if g.config.Model != "" {
		cfg.Model = g.config.Model
	}
	return &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.PCM},
		},
	}
}

// Close closes the underlying gRPC connection.
func (g *Google) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// languageTag expands a bare language code to the region the API expects.
func languageTag(lang string) string {
	switch {
	case lang == "":
		return "en-US"
	case strings.Contains(lang, "-"):
		return lang
	case lang == "en":
		return "en-US"
	default:
		return lang
	}
}

var _ Recognizer = (*Google)(nil)
