package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// webhookTimeout bounds one delivery call.
const webhookTimeout = 15 * time.Second

// Webhook posts messages to per-channel webhook URLs.
type Webhook struct {
	noticeURL  string
	generalURL string
	testMode   bool
	http       *http.Client
	logger     *slog.Logger
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithTestMode reroutes all notices to the general channel.
func WithTestMode(on bool) WebhookOption {
	return func(w *Webhook) {
		w.testMode = on
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) WebhookOption {
	return func(w *Webhook) {
		w.http = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) WebhookOption {
	return func(w *Webhook) {
		w.logger = l
	}
}

// NewWebhook creates a webhook notifier for the two channel URLs.
func NewWebhook(noticeURL, generalURL string, opts ...WebhookOption) *Webhook {
	w := &Webhook{noticeURL: noticeURL, generalURL: generalURL}
	for _, opt := range opts {
		opt(w)
	}
	if w.http == nil {
		w.http = &http.Client{Timeout: webhookTimeout}
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// SendNotice delivers one formatted notice to the notice channel, or to
// the general channel in test mode.
func (w *Webhook) SendNotice(ctx context.Context, n Notice) bool {
	target := w.noticeURL
	if w.testMode {
		target = w.generalURL
	}
	return w.post(ctx, target, FormatNotice(n))
}

// SendGeneral delivers run narration to the general channel.
func (w *Webhook) SendGeneral(ctx context.Context, message string) bool {
	return w.post(ctx, w.generalURL, message)
}

func (w *Webhook) post(ctx context.Context, target, text string) bool {
	if target == "" {
		w.logger.Debug("notification channel not configured, dropping message")
		return false
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		w.logger.Error("notification marshal failed", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		w.logger.Error("notification request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		w.logger.Error("notification delivery failed", "error", err)
		return false
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.logger.Error("notification rejected", "status", resp.StatusCode)
		return false
	}
	return true
}
