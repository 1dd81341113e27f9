package domain

import "strings"

// ScoreOverlap is the naive similarity measure store adapters use when no
// vector engine is behind them: the fraction of query terms appearing in
// the text, case-insensitively. Sharing it keeps ranking consistent
// across backends.
func ScoreOverlap(query, text string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
