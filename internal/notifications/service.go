package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"splicer/internal/config"
)

const userAgent = "splicer/0.1.0"

// JobSummary describes a finished job for notification text.
type JobSummary struct {
	ID       string
	Kind     string
	Output   string
	Size     int64
	Duration time.Duration
	// Step is the 1-based step that failed, zero when not step specific.
	Step int
}

// Service defines the notification surface exposed to the job runner.
type Service interface {
	NotifyJobSucceeded(ctx context.Context, job JobSummary) error
	NotifyJobFailed(ctx context.Context, job JobSummary, err error) error
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

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		succeeded: cfg.Notifications.JobSucceeded,
		failed:    cfg.Notifications.JobFailed,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	succeeded bool
	failed    bool
}

func (n *ntfyService) NotifyJobSucceeded(ctx context.Context, job JobSummary) error {
	if !n.succeeded {
		return nil
	}
	kind := labelOrUnknown(job.Kind)
	message := fmt.Sprintf("✅ %s job finished in %s", kind, formatDuration(job.Duration))
	if out := strings.TrimSpace(job.Output); out != "" {
		message = fmt.Sprintf("%s\nOutput: %s (%s)", message, out, formatSize(job.Size))
	}
	return n.send(ctx, payload{
		title:   "Splicer - Job Complete",
		message: message,
		tags:    []string{"splicer", kind, "completed"},
	})
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, job JobSummary, err error) error {
	if !n.failed {
		return nil
	}
	kind := labelOrUnknown(job.Kind)
	var builder strings.Builder
	builder.WriteString("❌ ")
	builder.WriteString(kind)
	builder.WriteString(" job failed")
	if job.Step > 0 {
		fmt.Fprintf(&builder, " at step %d", job.Step)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Splicer - Job Failed",
		message:  builder.String(),
		tags:     []string{"splicer", kind, "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Splicer - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"splicer", "test"},
		priority: "low",
	})
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

func labelOrUnknown(kind string) string {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return "unknown"
	}
	return kind
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

type noopService struct{}

func (noopService) NotifyJobSucceeded(context.Context, JobSummary) error     { return nil }
func (noopService) NotifyJobFailed(context.Context, JobSummary, error) error { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
