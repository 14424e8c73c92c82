// Package slack sends high-priority complaint notifications to Slack via
// incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/civicsense/internal/triage"
)

const (
	maxTextLen  = 2000
	httpTimeout = 10 * time.Second
)

// Notifier posts complaint summaries to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts a complaint to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, c *triage.Complaint) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(c)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(c *triage.Complaint) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(c),
			{"type": "divider"},
			fieldsBlock(c),
			textBlock(c),
			{"type": "divider"},
			contextBlock(c),
		},
	}
}

func headerBlock(c *triage.Complaint) map[string]any {
	text := fmt.Sprintf("%s High Priority Complaint: %s", priorityEmoji(string(c.Priority)), c.Category)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(c *triage.Complaint) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Department:* %s", c.Department),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Priority:* %s", string(c.Priority)),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Category:* %s", string(c.Category)),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Location:* %s", c.Location),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func textBlock(c *triage.Complaint) map[string]any {
	text := truncate(c.Text, maxTextLen)
	if text == "" {
		text = "_No complaint text._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Complaint*\n\n%s", text),
		},
	}
}

func contextBlock(c *triage.Complaint) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("civicsense • complaint %s • %s", c.ID, c.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func priorityEmoji(priority string) string {
	switch strings.ToLower(priority) {
	case "high":
		return "\U0001f534" // red circle
	case "medium":
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
