package triage

import "context"

// Completer is the interface for the external text-completion capability that
// backs classification and sentiment scoring. Implementations must make a
// single attempt with a bounded timeout; the adapters own all fallback
// behavior, so an error here never surfaces past them.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TextTranslator is the interface for the external translation capability.
// Target language is always the pipeline's working language.
type TextTranslator interface {
	Translate(ctx context.Context, text, sourceLang string) (string, error)
}

// WorkingLanguage is the language classification and scoring operate on.
// Submissions in any other language are translated into it first.
const WorkingLanguage = "en"
