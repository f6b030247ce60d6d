package finetune

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/teslashibe/go-voiceqa/pkg/inference"
)

// Defaults for a fine-tuning run.
const (
	DefaultTrainingFile = "data_converted.jsonl"
	DefaultBaseModel    = "gpt-3.5-turbo"
	DefaultPollInterval = 60 * time.Second
	DefaultTestPrompt   = "What is the capital of France?"
)

// Config describes one fine-tuning run.
type Config struct {
	TrainingFile string
	BaseModel    string

	// PollInterval is the wait between status checks.
	PollInterval time.Duration

	// MaxPolls stops polling after this many status checks. Zero polls until
	// the job reaches a terminal status, however long that takes.
	MaxPolls int

	// TestPrompt is sent once to the fine-tuned model.
	TestPrompt string

	Logger *slog.Logger
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		TrainingFile: DefaultTrainingFile,
		BaseModel:    DefaultBaseModel,
		PollInterval: DefaultPollInterval,
		TestPrompt:   DefaultTestPrompt,
		Logger:       slog.Default(),
	}
}

// Printer receives the progress lines of a run.
type Printer interface {
	Printf(format string, args ...any)
}

// WriterPrinter prints progress lines to W.
type WriterPrinter struct {
	W io.Writer
}

// Printf writes one line.
func (p WriterPrinter) Printf(format string, args ...any) {
	fmt.Fprintf(p.W, format+"\n", args...)
}

// Result is the outcome of a completed run.
type Result struct {
	FileID string
	JobID  string

	// Status is the terminal job status.
	Status string

	// Polls is the number of status checks made.
	Polls int

	Succeeded      bool
	FineTunedModel string

	// Response is the fine-tuned model's answer to the test prompt.
	Response string

	// ValidateErr is set when the test prompt could not be answered.
	ValidateErr error
}

// Manager drives a fine-tuning job through its lifecycle.
type Manager struct {
	cfg     Config
	api     API
	chat    inference.Provider
	printer Printer
	logger  *slog.Logger
}

// NewManager creates a manager. chat is used only after a successful job.
func NewManager(cfg Config, api API, chat inference.Provider) *Manager {
	d := DefaultConfig()
	if cfg.TrainingFile == "" {
		cfg.TrainingFile = d.TrainingFile
	}
	if cfg.BaseModel == "" {
		cfg.BaseModel = d.BaseModel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = d.PollInterval
	}
	if cfg.TestPrompt == "" {
		cfg.TestPrompt = d.TestPrompt
	}
	if cfg.Logger == nil {
		cfg.Logger = d.Logger
	}
	return &Manager{
		cfg:     cfg,
		api:     api,
		chat:    chat,
		printer: WriterPrinter{W: os.Stdout},
		logger:  cfg.Logger.With("component", "finetune.manager"),
	}
}

// SetPrinter replaces the stdout printer.
func (m *Manager) SetPrinter(p Printer) {
	m.printer = p
}

// Run uploads, creates, polls and dispatches. A job that fails, or whose
// fine-tuned model cannot answer the test prompt, yields a Result and no
// error; errors are always *StageError and stop the run before a terminal
// status is seen.
func (m *Manager) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	file, err := m.api.UploadFile(ctx, m.cfg.TrainingFile)
	if err != nil {
		m.printer.Printf("Error uploading file: %v", err)
		return nil, &StageError{Stage: StageUpload, Err: err}
	}
	res.FileID = file.ID
	m.printer.Printf("File uploaded successfully with ID: %s", file.ID)
	m.logger.Info("training file uploaded", "file_id", file.ID, "path", m.cfg.TrainingFile)

	job, err := m.api.CreateJob(ctx, file.ID, m.cfg.BaseModel)
	if err != nil {
		m.printer.Printf("Error creating fine-tuning job: %v", err)
		return nil, &StageError{Stage: StageCreate, Err: err}
	}
	res.JobID = job.ID
	m.printer.Printf("Fine-tuning job created with ID: %s", job.ID)
	m.logger.Info("fine-tuning job created", "job_id", job.ID, "model", m.cfg.BaseModel)

	job, err = m.poll(ctx, job.ID, res)
	if err != nil {
		return nil, err
	}
	res.Status = job.Status

	if job.Status != StatusSucceeded {
		m.printer.Printf("Fine-tuning job did not succeed.")
		m.logger.Warn("fine-tuning job did not succeed", "job_id", job.ID, "status", job.Status)
		return res, nil
	}

	res.Succeeded = true
	res.FineTunedModel = job.FineTunedModel

	answer, err := m.validate(ctx, job.FineTunedModel)
	if err != nil {
		m.printer.Printf("Error using the fine-tuned model: %v", err)
		m.logger.Warn("fine-tuned model request failed", "model", job.FineTunedModel, "error", err)
		res.ValidateErr = err
		return res, nil
	}
	res.Response = answer
	m.printer.Printf("Response from fine-tuned model: %s", answer)
	return res, nil
}

func (m *Manager) poll(ctx context.Context, id string, res *Result) (*Job, error) {
	for {
		job, err := m.api.GetJob(ctx, id)
		if err != nil {
			m.printer.Printf("Error checking job status: %v", err)
			return nil, &StageError{Stage: StagePoll, Err: err}
		}
		res.Polls++
		m.printer.Printf("Fine-tuning job status: %s", job.Status)
		m.logger.Debug("job polled", "job_id", id, "status", job.Status, "polls", res.Polls)

		if job.Terminal() {
			return job, nil
		}
		if m.cfg.MaxPolls > 0 && res.Polls >= m.cfg.MaxPolls {
			return nil, &StageError{Stage: StagePoll, Err: ErrPollLimit}
		}

		t := time.NewTimer(m.cfg.PollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, &StageError{Stage: StagePoll, Err: ctx.Err()}
		case <-t.C:
		}
	}
}

func (m *Manager) validate(ctx context.Context, model string) (string, error) {
	resp, err := m.chat.Chat(ctx, &inference.ChatRequest{
		Messages: []inference.Message{inference.NewUserMessage(m.cfg.TestPrompt)},
		Model:    model,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}
