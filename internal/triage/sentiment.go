package triage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/linnemanlabs/go-core/log"
)

// Assessment is the structured sentiment/urgency judgment for a complaint.
type Assessment struct {
	Sentiment    float64  `json:"sentiment"`
	Priority     Priority `json:"priority"`
	UrgencyWords []string `json:"urgency_words"`
}

// Scorer produces an Assessment via the external completion capability,
// falling back to the urgency vocabulary heuristic when the call fails or the
// response does not validate. The fallback never produces PriorityLow.
type Scorer struct {
	llm     Completer
	logger  log.Logger
	metrics *Metrics
}

// NewScorer creates a sentiment/priority adapter.
func NewScorer(llm Completer, logger log.Logger, metrics *Metrics) *Scorer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Scorer{llm: llm, logger: logger, metrics: metrics}
}

// Score returns the assessment for text. Never errors outward.
func (s *Scorer) Score(ctx context.Context, text string) Assessment {
	prompt := fmt.Sprintf(
		"Analyze this complaint for sentiment and urgency. Respond with JSON only:\n"+
			`{"sentiment": <number between -1 and 1>, "priority": "<High/Medium/Low>", "urgency_words": ["word1", "word2"]}`+
			"\n\nComplaint: %s", text)

	resp, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn(ctx, "sentiment call failed, using urgency heuristic", "error", err)
		return s.fallback(text)
	}

	a, err := parseAssessment(resp)
	if err != nil {
		s.logger.Warn(ctx, "sentiment response rejected, using urgency heuristic",
			"error", err, "response", resp)
		return s.fallback(text)
	}
	return a
}

func (s *Scorer) fallback(text string) Assessment {
	s.metrics.incFallback("score")

	words := UrgencyWords(text)
	priority := PriorityMedium
	if len(words) > 0 {
		priority = PriorityHigh
	}
	return Assessment{Sentiment: 0.0, Priority: priority, UrgencyWords: words}
}

// parseAssessment extracts the first balanced brace-delimited substring from
// resp, parses it, and validates the result schema. External structure is
// never trusted unvalidated: a violation is an adapter failure.
func parseAssessment(resp string) (Assessment, error) {
	raw, ok := firstJSONObject(resp)
	if !ok {
		return Assessment{}, fmt.Errorf("no JSON object in response")
	}

	var a Assessment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return Assessment{}, fmt.Errorf("parse assessment: %w", err)
	}
	if !a.Priority.Valid() {
		return Assessment{}, fmt.Errorf("invalid priority %q", a.Priority)
	}
	if a.Sentiment < -1 || a.Sentiment > 1 {
		return Assessment{}, fmt.Errorf("sentiment %v out of [-1, 1]", a.Sentiment)
	}
	return a, nil
}

// firstJSONObject returns the first balanced {...} substring of s.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}
	return "", false
}
