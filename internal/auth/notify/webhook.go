// Package notify delivers security events to an external webhook, such as a
// notification dispatcher or chat integration.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/monitordb/auth/internal/auth/service"
)

const defaultTimeout = 5 * time.Second

// Webhook posts each event as JSON to a single URL. It satisfies
// service.Notifier. Delivery is fire-and-forget from the caller's point of
// view; the auth service logs and discards any error returned here.
type Webhook struct {
	URL    string
	Client *http.Client
	Logger *slog.Logger
}

// NewWebhook builds a Webhook with a bounded-timeout HTTP client.
func NewWebhook(url string, logger *slog.Logger) *Webhook {
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: defaultTimeout},
		Logger: logger,
	}
}

// Notify posts the event. A non-2xx response is an error.
func (w *Webhook) Notify(ctx context.Context, ev service.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}

	if w.Logger != nil {
		w.Logger.Debug("event delivered", "type", ev.Type, "priority", ev.Priority)
	}
	return nil
}
