package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobboard/client")

// APIError is a non-2xx answer from the Job API. Message is the server's
// "error" field and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job api: status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the Job API over HTTP. Each call issues exactly one
// request; there are no retries.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) CreateJob(ctx context.Context, req *dtos.CreateJobRequest) (*models.Job, error) {
	var resp dtos.CreateJobResponse
	if err := c.do(ctx, http.MethodPost, "/api/jobs", req, &resp); err != nil {
		return nil, err
	}
	if resp.NewJob == nil {
		return nil, fmt.Errorf("job api: response missing newJob")
	}
	return resp.NewJob, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := c.do(ctx, http.MethodGet, "/api/organization", nil, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	ctx, span := tracer.Start(ctx, method+" "+path)
	defer span.End()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	span.SetAttributes(
		telemetry.String("http.method", method),
		telemetry.String("http.url", req.URL.String()),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()
	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody dtos.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Error
		}
		span.SetStatus(codes.Error, apiErr.Error())
		c.logger.Debug("job api returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Ping checks the API's own health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var body map[string]interface{}
	return c.do(ctx, http.MethodGet, "/health", nil, &body)
}
