package triage

import (
	"context"

	"github.com/linnemanlabs/go-core/log"
)

// Translator brings complaint text into the working language. Submissions
// already in the working language short-circuit with no external call; a
// failed translation degrades silently to the original text, which downstream
// classification and scoring then operate on as-is.
type Translator struct {
	backend TextTranslator
	logger  log.Logger
	metrics *Metrics
}

// NewTranslator creates a translation adapter. A nil backend behaves like a
// permanently failing one: foreign-language text passes through untranslated.
func NewTranslator(backend TextTranslator, logger log.Logger, metrics *Metrics) *Translator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Translator{backend: backend, logger: logger, metrics: metrics}
}

// Translate returns text in the working language. Never errors outward.
func (t *Translator) Translate(ctx context.Context, text, sourceLang string) string {
	if sourceLang == WorkingLanguage {
		return text
	}

	if t.backend == nil {
		t.metrics.incFallback("translate")
		return text
	}

	out, err := t.backend.Translate(ctx, text, sourceLang)
	if err != nil {
		t.logger.Warn(ctx, "translation failed, keeping original text",
			"error", err, "source_lang", sourceLang)
		t.metrics.incFallback("translate")
		return text
	}
	return out
}
