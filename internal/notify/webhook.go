package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookPayload is the JSON structure sent to webhook endpoints
type WebhookPayload struct {
	ID      string            `json:"id"`
	Level   string            `json:"level"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
	Time    time.Time         `json:"time"`
}

// Webhook posts toasts to an HTTP endpoint as JSON
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a Webhook notifier with default HTTP client
func NewWebhook(url string) *Webhook {
	return NewWebhookWithClient(url, &http.Client{Timeout: 10 * time.Second})
}

// NewWebhookWithClient creates a Webhook notifier with custom HTTP client
func NewWebhookWithClient(url string, client *http.Client) *Webhook {
	return &Webhook{
		url:    url,
		client: client,
	}
}

// Notify posts the toast as JSON to the webhook URL
func (w *Webhook) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(WebhookPayload{
		ID:      n.ID,
		Level:   string(n.Level),
		Title:   n.Title,
		Message: n.Message,
		Context: n.Context,
		Time:    n.Time,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	return post(ctx, w.client, w.url, body, "webhook")
}

// Name returns "webhook"
func (w *Webhook) Name() string {
	return "webhook"
}
