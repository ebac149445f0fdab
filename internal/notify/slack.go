package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// Slack posts toasts to a Slack incoming webhook
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack notifier with default HTTP client
func NewSlack(webhookURL string) *Slack {
	return NewSlackWithClient(webhookURL, &http.Client{Timeout: 10 * time.Second})
}

// NewSlackWithClient creates a Slack notifier with custom HTTP client
func NewSlackWithClient(webhookURL string, client *http.Client) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     client,
	}
}

var slackEmoji = map[Level]string{
	LevelSuccess: ":white_check_mark:",
	LevelInfo:    ":information_source:",
	LevelWarning: ":warning:",
	LevelError:   ":rotating_light:",
}

// Notify posts the toast to Slack
func (s *Slack) Notify(ctx context.Context, n Notification) error {
	keys := make([]string, 0, len(n.Context))
	for k := range n.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var contextFields []map[string]any
	for _, k := range keys {
		contextFields = append(contextFields, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*%s:* %s", k, n.Context[k]),
		})
	}

	blocks := []map[string]any{
		{
			"type": "section",
			"text": map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*%s*\n%s", n.Title, n.Message),
			},
		},
	}
	if len(contextFields) > 0 {
		blocks = append(blocks, map[string]any{
			"type":     "context",
			"elements": contextFields,
		})
	}

	payload := map[string]any{
		"text":   fmt.Sprintf("%s %s", slackEmoji[n.Level], n.Title),
		"blocks": blocks,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	return post(ctx, s.client, s.webhookURL, body, "slack webhook")
}

// Name returns "slack"
func (s *Slack) Name() string {
	return "slack"
}

func post(ctx context.Context, client *http.Client, url string, body []byte, what string) error {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", what, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned %d", what, resp.StatusCode)
	}
	return nil
}
