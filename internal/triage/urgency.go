package triage

import (
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// urgencyVocabulary is the fixed word list used as the local urgency signal
// when the sentiment capability is unavailable. Matching is case-insensitive
// substring containment, so "urgently" matches "urgent".
var urgencyVocabulary = []string{
	"accident", "fire", "blocked", "emergency", "urgent", "danger",
	"critical", "immediate", "help", "death", "injury",
}

// urgencyMatcher scans all vocabulary words in a single pass.
var urgencyMatcher = ahocorasick.NewStringMatcher(urgencyVocabulary)

// UrgencyWords returns the vocabulary words contained in text, in vocabulary
// order. Returns nil when nothing matches.
func UrgencyWords(text string) []string {
	hits := urgencyMatcher.Match([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return nil
	}
	sort.Ints(hits)

	words := make([]string, 0, len(hits))
	for _, i := range hits {
		words = append(words, urgencyVocabulary[i])
	}
	return words
}
