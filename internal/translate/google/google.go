// Package google implements the translation capability on the Google Cloud
// Translation API.
package google

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Translator wraps the Cloud Translation client. A nil *Translator is valid
// and returns input unchanged, so callers without an API key degrade cleanly.
type Translator struct {
	client *translate.Client
}

// New creates a Translator. Returns nil when apiKey is empty.
func New(ctx context.Context, apiKey string) (*Translator, error) {
	if apiKey == "" {
		return nil, nil
	}
	client, err := translate.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("translate client: %w", err)
	}
	return &Translator{client: client}, nil
}

// Close releases the underlying client.
func (t *Translator) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}

// Translate translates text into English. An unparseable source language tag
// is passed as unspecified so the API auto-detects.
func (t *Translator) Translate(ctx context.Context, text, sourceLang string) (string, error) {
	if t == nil || t.client == nil {
		return text, nil
	}

	opts := &translate.Options{Format: translate.Text}
	if tag, err := language.Parse(sourceLang); err == nil {
		opts.Source = tag
	}

	res, err := t.client.Translate(ctx, []string{text}, language.English, opts)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(res) == 0 {
		return "", fmt.Errorf("translate: empty result")
	}
	return res[0].Text, nil
}
