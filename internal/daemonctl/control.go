// Package daemonctl is the HTTP client for a running storyreel daemon. The
// CLI uses it to submit jobs and read status without touching the queue
// database directly.
package daemonctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"storyreel/internal/api"
	"storyreel/internal/config"
)

// ErrDaemonNotRunning indicates the daemon API is unreachable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Client talks to the daemon HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the given bind address ("host:port" or a full URL).
func New(bind string) *Client {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		bind = config.DefaultAPIBind
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	return &Client{
		baseURL: strings.TrimRight(bind, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewFromConfig builds a client for the configured API bind address.
func NewFromConfig(cfg *config.Config) *Client {
	if cfg == nil {
		return New("")
	}
	return New(cfg.API.Bind)
}

// BaseURL reports the resolved daemon API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping reports whether the daemon API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var status api.DaemonStatus
	return c.get(ctx, "/api/status", nil, &status)
}

// Healthy reports reachability without surfacing the error.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.Ping(ctx) == nil
}

// Status fetches daemon runtime status.
func (c *Client) Status(ctx context.Context) (*api.DaemonStatus, error) {
	var status api.DaemonStatus
	if err := c.get(ctx, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Submit enqueues a job from prompt text and an optional supporting document.
func (c *Client) Submit(ctx context.Context, text, documentPath string) (*api.SubmitResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("text", text); err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	if documentPath = strings.TrimSpace(documentPath); documentPath != "" {
		if err := attachDocument(writer, documentPath); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/jobs", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var submitted api.SubmitResponse
	if err := c.do(req, &submitted); err != nil {
		return nil, err
	}
	return &submitted, nil
}

func attachDocument(writer *multipart.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer file.Close()
	part, err := writer.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// JobByToken looks up a job by its public token. Returns nil when the token
// is unknown.
func (c *Client) JobByToken(ctx context.Context, token string) (*api.Job, error) {
	var resp api.JobResponse
	err := c.get(ctx, "/api/jobs", url.Values{"job_id": {token}}, &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &resp.Job, nil
}

// QueueList returns queued jobs, optionally filtered by status names.
func (c *Client) QueueList(ctx context.Context, statuses []string) ([]api.Job, error) {
	params := url.Values{}
	for _, status := range statuses {
		if status = strings.TrimSpace(status); status != "" {
			params.Add("status", status)
		}
	}
	var resp api.QueueListResponse
	if err := c.get(ctx, "/api/queue", params, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// QueueJob looks up a job by queue id. Returns nil when the id is unknown.
func (c *Client) QueueJob(ctx context.Context, id int64) (*api.Job, error) {
	var resp api.JobResponse
	err := c.get(ctx, "/api/queue/"+strconv.FormatInt(id, 10), nil, &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &resp.Job, nil
}

// Logs tails the daemon log file.
func (c *Client) Logs(ctx context.Context, lines int) ([]string, error) {
	params := url.Values{}
	if lines > 0 {
		params.Set("lines", strconv.Itoa(lines))
	}
	var resp api.LogTailResponse
	if err := c.get(ctx, "/api/logs", params, &resp); err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}

type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("daemon returned status %d", e.status)
}

func statusError(resp *http.Response) error {
	var payload api.ErrorResponse
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(body))
	}
	return &apiError{status: resp.StatusCode, message: payload.Error}
}

func isNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound
}
