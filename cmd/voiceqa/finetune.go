package main

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-voiceqa/internal/config"
	"github.com/teslashibe/go-voiceqa/internal/log"
	"github.com/teslashibe/go-voiceqa/pkg/finetune"
	"github.com/teslashibe/go-voiceqa/pkg/inference"
)

func runFinetune(ctx context.Context, cfg config.Config) error {
	logger := log.Component("finetune")

	api := finetune.NewClient(
		finetune.WithAPIKey(cfg.APIKey),
		finetune.WithBaseURL(cfg.BaseURL),
		finetune.WithClientLogger(logger),
	)

	chat, err := inference.NewClient(
		inference.WithAPIKey(cfg.APIKey),
		inference.WithBaseURL(cfg.BaseURL),
		inference.WithModel(cfg.BaseModel),
		inference.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("chat client: %w", err)
	}
	defer chat.Close()

	fmt.Println(banner("voiceqa finetune",
		"training file "+cfg.TrainingFile,
		"base model "+cfg.BaseModel,
		"poll every "+cfg.PollInterval.String(),
	))

	mgr := finetune.NewManager(finetune.Config{
		TrainingFile: cfg.TrainingFile,
		BaseModel:    cfg.BaseModel,
		PollInterval: cfg.PollInterval,
		TestPrompt:   cfg.TestPrompt,
		Logger:       logger,
	}, api, chat)

	res, err := mgr.Run(ctx)
	if err != nil {
		return err
	}
	if res.Succeeded {
		fmt.Println(okStyle.Render("Fine-tuned model: " + res.FineTunedModel))
	}
	return nil
}
