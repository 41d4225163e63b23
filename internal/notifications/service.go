package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyreel/internal/config"
)

const userAgent = "Storyreel/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyJobQueued(ctx context.Context, title string) error
	NotifyScriptReady(ctx context.Context, title string, frameCount int) error
	NotifyRenderCompleted(ctx context.Context, title string) error
	NotifyUploadCompleted(ctx context.Context, title, watchURL string) error
	NotifyJobFailed(ctx context.Context, title string, err error) error
	NotifyJobReview(ctx context.Context, title, reason string) error
	NotifyQueueDrained(ctx context.Context, processed, failed int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyJobQueued(ctx context.Context, title string) error {
	data := payload{
		title:   "Storyreel - Queued",
		message: fmt.Sprintf("Queued: %s", strings.TrimSpace(title)),
		tags:    []string{"storyreel", "queue", "added"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyScriptReady(ctx context.Context, title string, frameCount int) error {
	data := payload{
		title:   "Storyreel - Script Ready",
		message: fmt.Sprintf("Storyboard ready: %s (%d frames)", strings.TrimSpace(title), frameCount),
		tags:    []string{"storyreel", "script", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, title string) error {
	data := payload{
		title:   "Storyreel - Rendered",
		message: fmt.Sprintf("Video assembled: %s", strings.TrimSpace(title)),
		tags:    []string{"storyreel", "render", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyUploadCompleted(ctx context.Context, title, watchURL string) error {
	message := fmt.Sprintf("Published: %s", strings.TrimSpace(title))
	if watchURL = strings.TrimSpace(watchURL); watchURL != "" {
		message = fmt.Sprintf("%s\n%s", message, watchURL)
	}
	data := payload{
		title:    "Storyreel - Published",
		message:  message,
		tags:     []string{"storyreel", "upload", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, title string, err error) error {
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Storyreel - Failed",
		message:  fmt.Sprintf("Failed: %s\n%s", strings.TrimSpace(title), detail),
		tags:     []string{"storyreel", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobReview(ctx context.Context, title, reason string) error {
	message := fmt.Sprintf("Needs review: %s", strings.TrimSpace(title))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:   "Storyreel - Review",
		message: message,
		tags:    []string{"storyreel", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueDrained(ctx context.Context, processed, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failed == 0 {
		title = "Storyreel - Queue Drained"
		message = fmt.Sprintf("Queue drained: %d jobs processed in %s", processed, duration)
	} else {
		title = "Storyreel - Queue Drained (with errors)"
		message = fmt.Sprintf("Queue drained: %d succeeded, %d failed in %s", processed, failed, duration)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"storyreel", "queue", "drained"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Storyreel - Test",
		message:  "Notification system test",
		tags:     []string{"storyreel", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobQueued(context.Context, string) error                     { return nil }
func (noopService) NotifyScriptReady(context.Context, string, int) error              { return nil }
func (noopService) NotifyRenderCompleted(context.Context, string) error               { return nil }
func (noopService) NotifyUploadCompleted(context.Context, string, string) error       { return nil }
func (noopService) NotifyJobFailed(context.Context, string, error) error              { return nil }
func (noopService) NotifyJobReview(context.Context, string, string) error             { return nil }
func (noopService) NotifyQueueDrained(context.Context, int, int, time.Duration) error { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
