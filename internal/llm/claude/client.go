// Package claude implements the external text-completion capability on the
// Anthropic API. Calls are single-attempt with a bounded timeout; all
// fallback behavior lives in the triage adapters, not here.
package claude

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// requestTimeout bounds a single completion call. The adapters treat a
	// timeout the same as any other failure.
	requestTimeout = 30 * time.Second

	responseTokens = 1024
)

// Observer receives per-call outcome and duration, wired to Prometheus by main.
type Observer func(outcome string, seconds float64)

// Client sends single-turn completion requests to the Claude API.
type Client struct {
	model    string
	client   anthropic.Client
	observer Observer
}

// New creates a completion client. Retries are disabled: a failed call has a
// documented local fallback and a retry would only add cost and latency.
// Extra request options are accepted for tests.
func New(apiKey, model string, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(requestTimeout),
	}
	return &Client{
		model:  model,
		client: anthropic.NewClient(append(base, opts...)...),
	}
}

// SetObserver installs a call-metrics hook. Must be called before first use.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// Complete sends one user prompt and returns the concatenated text content of
// the response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: responseTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.observe("error", start)
		return "", fmt.Errorf("claude completion: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		c.observe("empty", start)
		return "", fmt.Errorf("claude completion: empty response")
	}

	c.observe("ok", start)
	return text, nil
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.observer != nil {
		c.observer(outcome, time.Since(start).Seconds())
	}
}
