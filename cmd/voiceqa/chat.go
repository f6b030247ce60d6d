package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/teslashibe/go-voiceqa/internal/config"
	"github.com/teslashibe/go-voiceqa/internal/log"
	"github.com/teslashibe/go-voiceqa/pkg/assistant"
	"github.com/teslashibe/go-voiceqa/pkg/audio"
	"github.com/teslashibe/go-voiceqa/pkg/inference"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
	"github.com/teslashibe/go-voiceqa/pkg/stt"
	"github.com/teslashibe/go-voiceqa/pkg/tts"
	"github.com/teslashibe/go-voiceqa/pkg/web"
)

type recognizer interface {
	stt.Recognizer
	Close() error
}

func runChat(ctx context.Context, cfg config.Config) error {
	logger := log.Component("chat")

	actx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	defer actx.Close()

	listener := audio.NewListener(actx, audio.DefaultListenConfig())
	player := audio.NewPlayer(actx)
	player.SetVolume(audio.DefaultVolume)

	rec, err := newRecognizer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("speech recognition: %w", err)
	}
	defer rec.Close()

	voice, err := tts.NewOpenAI(
		tts.WithAPIKey(cfg.APIKey),
		tts.WithBaseURL(cfg.BaseURL),
		tts.WithModel(cfg.TTSModel),
		tts.WithVoice(cfg.TTSVoice),
		tts.WithSpeed(cfg.TTSSpeed),
		tts.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}
	defer voice.Close()
	speaker := tts.NewSpeaker(voice, player, tts.WithOutput(os.Stdout), tts.WithSpeakerLogger(logger))

	chat, err := inference.NewClient(
		inference.WithAPIKey(cfg.APIKey),
		inference.WithBaseURL(cfg.BaseURL),
		inference.WithModel(cfg.Model),
		inference.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("chat client: %w", err)
	}
	defer chat.Close()

	acfg := assistant.DefaultConfig()
	acfg.Model = cfg.Model
	acfg.Retries = cfg.Retries
	acfg.Pause = cfg.Pause
	acfg.Out = os.Stdout
	acfg.Logger = logger
	acfg.LenientExit = cfg.STTBackend != config.STTGoogle

	recorder := metrics.NewRecorder()
	loop := assistant.NewLoop(acfg,
		assistant.NewCapturer(acfg, listener, rec, speaker, recorder),
		assistant.NewAnswerer(acfg, chat, recorder),
		assistant.NewSentimentClassifier(acfg, chat, recorder),
		speaker,
		recorder,
	)

	lines := []string{
		"session " + loop.Session(),
		fmt.Sprintf("model %s, stt %s, voice %s", cfg.Model, cfg.STTBackend, cfg.TTSVoice),
	}

	if cfg.DashboardPort != "" {
		dash := web.NewServer(loop, recorder, logger)
		loop.SetObserver(dash.Observe)
		recorder.OnUpdate(dash.MetricsUpdated)

		addr, err := dash.Start(ctx, ":"+cfg.DashboardPort)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		lines = append(lines, "dashboard http://"+addr.String())
	}

	fmt.Println(banner("voiceqa", lines...))

	summary := loop.Run(ctx)
	logger.Info("session ended",
		"session", loop.Session(),
		"throughput", summary.Throughput,
		"answer_success_pct", summary.AnswerSuccessPct)
	return nil
}

func newRecognizer(ctx context.Context, cfg config.Config, logger *slog.Logger) (recognizer, error) {
	switch cfg.STTBackend {
	case config.STTGoogle:
		return stt.NewGoogle(ctx,
			stt.WithAPIKey(cfg.GoogleAPIKey),
			stt.WithLanguage(cfg.Language),
			stt.WithLogger(logger),
		)
	case config.STTOpenAI, "":
		return stt.NewOpenAI(
			stt.WithAPIKey(cfg.APIKey),
			stt.WithBaseURL(cfg.BaseURL),
			stt.WithModel(cfg.STTModel),
			stt.WithLanguage(cfg.Language),
			stt.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.STTBackend)
	}
}
