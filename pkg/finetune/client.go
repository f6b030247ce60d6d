package finetune

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// ClientOption is a functional option for Client.
type ClientOption func(*ClientConfig)

// WithBaseURL overrides the API root.
func WithBaseURL(url string) ClientOption {
	return func(c *ClientConfig) {
		if url != "" {
			c.BaseURL = url
		}
	}
}

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) ClientOption {
	return func(c *ClientConfig) {
		c.APIKey = key
	}
}

// WithTimeout sets the request timeout. Uploads of large files may need more than the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *ClientConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

// Client talks to the files and fine-tuning endpoints.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a client. The API key is passed through as-is.
func NewClient(opts ...ClientOption) *Client {
	cfg := ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: 2 * time.Minute,
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	http := resty.New()
	http.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	http.SetTimeout(cfg.Timeout)
	http.SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		http.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:   http,
		logger: cfg.Logger.With("component", "finetune.client"),
	}
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// UploadFile uploads a training file with purpose "fine-tune".
func (c *Client) UploadFile(ctx context.Context, path string) (*File, error) {
	var file File
	resp, err := c.http.R().
		SetContext(ctx).
		SetFile("file", path).
		SetFormData(map[string]string{"purpose": PurposeFineTune}).
		SetResult(&file).
		SetError(&errorBody{}).
		Post("/files")
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", path, err)
	}
	if err := apiError(resp); err != nil {
		return nil, err
	}

	c.logger.Debug("file uploaded", "id", file.ID, "bytes", file.Bytes)
	return &file, nil
}

// CreateJob starts a fine-tuning job.
func (c *Client) CreateJob(ctx context.Context, trainingFile, model string) (*Job, error) {
	var job Job
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"training_file": trainingFile,
			"model":         model,
		}).
		SetResult(&job).
		SetError(&errorBody{}).
		Post("/fine_tuning/jobs")
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := apiError(resp); err != nil {
		return nil, err
	}

	c.logger.Debug("job created", "id", job.ID, "model", job.Model)
	return &job, nil
}

// GetJob fetches the current state of a job.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&job).
		SetError(&errorBody{}).
		Get("/fine_tuning/jobs/{id}")
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	if err := apiError(resp); err != nil {
		return nil, err
	}
	return &job, nil
}

func apiError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	e := &APIError{StatusCode: resp.StatusCode(), Message: resp.String()}
	if body, ok := resp.Error().(*errorBody); ok && body.Error.Message != "" {
		e.Message = body.Error.Message
		e.Type = body.Error.Type
		e.Code = body.Error.Code
	}
	return e
}

var _ API = (*Client)(nil)
