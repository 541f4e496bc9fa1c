package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
)

// placeholderMarker marks a webhook URL copied from the sample config.
const placeholderMarker = "REPLACE_ME"

// Webhook posts the payload as JSON to a URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook returns a webhook sink, or nil when url is empty or still the
// sample placeholder.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if url == "" || strings.Contains(url, placeholderMarker) {
		zap.L().Warn("notify: webhook not configured, lead notifications disabled")
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name implements Notifier.
func (w *Webhook) Name() string { return "webhook" }

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, p model.NotificationPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "webhook: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "webhook: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "webhook: post")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return eris.Errorf("webhook: returned status %d", resp.StatusCode)
	}
	return nil
}
