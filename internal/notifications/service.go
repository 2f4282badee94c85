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

const userAgent = "StoryReel/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyPlanAwaitingReview(ctx context.Context, projectName string, segmentCount int) error
	NotifySegmentAwaitingReview(ctx context.Context, projectName string, segmentIndex int) error
	NotifySegmentFailed(ctx context.Context, projectName string, segmentIndex int, reason string) error
	NotifyProjectCompleted(ctx context.Context, projectName, finalVideo string) error
	NotifyProjectPublished(ctx context.Context, projectName, url string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		review:     cfg.Notifications.Review,
		completion: cfg.Notifications.Completion,
		errors:     cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	review     bool
	completion bool
	errors     bool
}

func (n *ntfyService) NotifyPlanAwaitingReview(ctx context.Context, projectName string, segmentCount int) error {
	if !n.review {
		return nil
	}
	projectName = strings.TrimSpace(projectName)
	data := payload{
		title:   "StoryReel - Plan Ready",
		message: fmt.Sprintf("Plan for %s is ready: %d segment prompts awaiting review", projectName, segmentCount),
		tags:    []string{"storyreel", "plan", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySegmentAwaitingReview(ctx context.Context, projectName string, segmentIndex int) error {
	if !n.review {
		return nil
	}
	projectName = strings.TrimSpace(projectName)
	data := payload{
		title:   "StoryReel - Segment Ready",
		message: fmt.Sprintf("Segment %d of %s generated and awaiting review", segmentIndex, projectName),
		tags:    []string{"storyreel", "segment", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySegmentFailed(ctx context.Context, projectName string, segmentIndex int, reason string) error {
	if !n.errors {
		return nil
	}
	projectName = strings.TrimSpace(projectName)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown failure"
	}
	data := payload{
		title:    "StoryReel - Segment Failed",
		message:  fmt.Sprintf("Segment %d of %s failed: %s", segmentIndex, projectName, reason),
		tags:     []string{"storyreel", "segment", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyProjectCompleted(ctx context.Context, projectName, finalVideo string) error {
	if !n.completion {
		return nil
	}
	projectName = strings.TrimSpace(projectName)
	finalVideo = strings.TrimSpace(finalVideo)
	message := fmt.Sprintf("Final video ready: %s", projectName)
	if finalVideo != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, finalVideo)
	}
	data := payload{
		title:    "StoryReel - Complete",
		message:  message,
		tags:     []string{"storyreel", "project", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyProjectPublished(ctx context.Context, projectName, url string) error {
	if !n.completion {
		return nil
	}
	projectName = strings.TrimSpace(projectName)
	url = strings.TrimSpace(url)
	message := fmt.Sprintf("Published: %s", projectName)
	if url != "" {
		message = fmt.Sprintf("%s\n%s", message, url)
	}
	data := payload{
		title:   "StoryReel - Published",
		message: message,
		tags:    []string{"storyreel", "project", "published"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "StoryReel - Error",
		message:  builder.String(),
		tags:     []string{"storyreel", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "StoryReel - Test",
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

func (noopService) NotifyPlanAwaitingReview(context.Context, string, int) error         { return nil }
func (noopService) NotifySegmentAwaitingReview(context.Context, string, int) error      { return nil }
func (noopService) NotifySegmentFailed(context.Context, string, int, string) error      { return nil }
func (noopService) NotifyProjectCompleted(context.Context, string, string) error        { return nil }
func (noopService) NotifyProjectPublished(context.Context, string, string) error        { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
