// Package finetune runs a fine-tuning job end to end: upload the training
// file, create the job, poll it until it reaches a terminal status, and
// exercise the resulting model once.
package finetune

import (
	"context"
	"errors"
	"fmt"
)

// Job statuses reported by the fine-tuning API.
const (
	StatusValidatingFiles = "validating_files"
	StatusQueued          = "queued"
	StatusRunning         = "running"
	StatusSucceeded       = "succeeded"
	StatusFailed          = "failed"
	StatusCancelled       = "cancelled"
)

// PurposeFineTune is the upload purpose for training files.
const PurposeFineTune = "fine-tune"

// File is an uploaded file.
type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Bytes    int64  `json:"bytes"`
	Purpose  string `json:"purpose"`
}

// Job is a fine-tuning job as returned by the API.
type Job struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Model          string `json:"model"`
	TrainingFile   string `json:"training_file"`
	FineTunedModel string `json:"fine_tuned_model"`
	CreatedAt      int64  `json:"created_at"`
	FinishedAt     int64  `json:"finished_at"`
}

// Terminal reports whether the job will not change status again.
func (j *Job) Terminal() bool {
	return IsTerminal(j.Status)
}

// IsTerminal reports whether status ends polling. Only succeeded and failed
// do; any other status, cancelled included, keeps the manager polling.
func IsTerminal(status string) bool {
	return status == StatusSucceeded || status == StatusFailed
}

// API is the subset of the files and fine-tuning endpoints the Manager uses.
type API interface {
	UploadFile(ctx context.Context, path string) (*File, error)
	CreateJob(ctx context.Context, trainingFile, model string) (*Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
}

// Stage names a step of the pipeline.
type Stage string

const (
	StageUpload Stage = "upload"
	StageCreate Stage = "create"
	StagePoll   Stage = "poll"
)

// ErrPollLimit is returned when MaxPolls is reached before a terminal status.
var ErrPollLimit = errors.New("finetune: poll limit reached")

// StageError reports which step of the pipeline failed.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("finetune %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// APIError represents an error response from the fine-tuning API.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("finetune: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("finetune: API error %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsNotFound returns true if the resource was not found (HTTP 404).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}
