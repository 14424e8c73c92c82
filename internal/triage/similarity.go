package triage

import "strings"

// Similarity computes token-overlap similarity between two texts. Both are
// lower-cased and whitespace-split into sets of unique tokens; the score is
// |intersection| / max(|a|, |b|), which skews low when one text is much
// longer than the other. Two empty token sets score 0.0.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	if larger == 0 {
		return 0.0
	}

	var common int
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			common++
		}
	}
	return float64(common) / float64(larger)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
