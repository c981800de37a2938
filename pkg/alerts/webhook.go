package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
)

// Webhook event names.
const (
	EventViralAlert = "viral_alert"
	EventNotice     = "notice"
)

// WebhookNotifier posts JSON events to an arbitrary endpoint. Alerts carry
// their summary, category and caption as separate fields.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier.
// If secret is non-empty, bodies are signed with HMAC-SHA256 in X-Signature-256.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

// Send posts a plain notice such as the startup or test message.
func (w *WebhookNotifier) Send(ctx context.Context, message string) error {
	return w.post(ctx, webhookEvent{Event: EventNotice, Message: message})
}

// SendAlert posts a viral alert with its fields broken out.
func (w *WebhookNotifier) SendAlert(ctx context.Context, alert model.Alert) error {
	return w.post(ctx, webhookEvent{
		Event:   EventViralAlert,
		Message: alert.Message(),
		Alert:   &alert,
	})
}

func (w *WebhookNotifier) post(ctx context.Context, event webhookEvent) error {
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "viraltrack/1.0")
	req.Header.Set("X-Viraltrack-Event", event.Event)
	if w.secret != "" {
		req.Header.Set("X-Signature-256", "sha256="+sign(body, w.secret))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook %s: %w", event.Event, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

type webhookEvent struct {
	Event     string       `json:"event"`
	Timestamp string       `json:"timestamp"`
	Message   string       `json:"message"`
	Alert     *model.Alert `json:"alert,omitempty"`
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ AlertNotifier = (*WebhookNotifier)(nil)
