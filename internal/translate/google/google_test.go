package google

import (
	"context"
	"testing"
)

func TestNew_EmptyKeyDisablesTranslation(t *testing.T) {
	t.Parallel()

	tr, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr != nil {
		t.Errorf("New with empty key = %v, want nil translator", tr)
	}
}

func TestTranslate_NilTranslatorPassthrough(t *testing.T) {
	t.Parallel()

	var tr *Translator
	got, err := tr.Translate(context.Background(), "sadak par bada gaddha", "hi")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "sadak par bada gaddha" {
		t.Errorf("Translate = %q, want input unchanged", got)
	}
}

func TestClose_NilTranslator(t *testing.T) {
	t.Parallel()

	var tr *Translator
	if err := tr.Close(); err != nil {
		t.Errorf("Close on nil translator: %v", err)
	}
}
