package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zrn-ns/curacast/internal/config"
	"github.com/zrn-ns/curacast/internal/episode"
)

const userAgent = "curacast/1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyRunStarted(ctx context.Context, candidates int) error
	NotifyEpisodePublished(ctx context.Context, ep episode.Episode) error
	NotifyRunFailed(ctx context.Context, runErr error) error
	NotifyRunSkipped(ctx context.Context, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		cfg:      cfg,
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
	cfg      config.Notifications
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, candidates int) error {
	if !n.cfg.RunStarted {
		return nil
	}
	data := payload{
		title:   "Curacast - Run Started",
		message: fmt.Sprintf("Run started with %d candidates", candidates),
		tags:    []string{"curacast", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEpisodePublished(ctx context.Context, ep episode.Episode) error {
	if !n.cfg.Published {
		return nil
	}
	minutes := ep.DurationSeconds / 60
	seconds := ep.DurationSeconds % 60
	data := payload{
		title: "Curacast - Episode Published",
		message: fmt.Sprintf("%s\n%d articles, %d:%02d",
			strings.TrimSpace(ep.Title), len(ep.Articles), minutes, seconds),
		tags:     []string{"curacast", "episode", "published"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runErr error) error {
	if !n.cfg.Errors {
		return nil
	}
	message := "Run failed: unknown"
	if runErr != nil {
		message = fmt.Sprintf("Run failed: %s", strings.TrimSpace(runErr.Error()))
	}
	data := payload{
		title:    "Curacast - Run Failed",
		message:  message,
		tags:     []string{"curacast", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunSkipped(ctx context.Context, reason string) error {
	if !n.cfg.RunStarted {
		return nil
	}
	data := payload{
		title:   "Curacast - Run Skipped",
		message: fmt.Sprintf("No episode produced: %s", strings.TrimSpace(reason)),
		tags:    []string{"curacast", "run", "skipped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Curacast - Test",
		message:  "Notification system test",
		tags:     []string{"curacast", "test"},
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

func (noopService) NotifyRunStarted(context.Context, int) error                   { return nil }
func (noopService) NotifyEpisodePublished(context.Context, episode.Episode) error { return nil }
func (noopService) NotifyRunFailed(context.Context, error) error                  { return nil }
func (noopService) NotifyRunSkipped(context.Context, string) error                { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
