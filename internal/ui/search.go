package ui

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// closestMatch returns the index of the label nearest to query, or -1.
// Labels containing the query win over edit distance; ties keep the earliest.
func closestMatch(query string, labels []string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return -1
	}

	best, bestScore := -1, 0
	for i, label := range labels {
		l := strings.ToLower(label)
		var score int
		if pos := strings.Index(l, q); pos >= 0 {
			// Substring hits rank by match position, then by label length
			score = pos<<16 + len(l) - 1<<30
		} else {
			score = levenshtein.ComputeDistance(q, l)
		}
		if best < 0 || score < bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
