// voiceqa is a spoken general-knowledge assistant with session metrics,
// plus a pipeline that fine-tunes a chat model on a JSONL training file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-voiceqa/internal/config"
	"github.com/teslashibe/go-voiceqa/internal/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "voiceqa",
		Short: "Voice question answering with LLMOps metrics",
		Long: `voiceqa listens for spoken questions, answers them with a chat model,
asks for feedback and classifies its sentiment, then reports session metrics.

Settings come from the environment (and .env). See internal/config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			log.Init(cfg.LogLevel)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "chat",
			Short: "Run an interactive voice session",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runChat(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "finetune",
			Short: "Upload training data, fine-tune a model and test it",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFinetune(cmd.Context(), cfg)
			},
		},
	)

	return root
}
