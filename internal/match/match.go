// Package match scores user-typed place and line names against stored names.
package match

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultMinConfidence is the lowest score treated as a confident match.
const DefaultMinConfidence = 70

// Similarity scores two strings from 0 (nothing in common) to 100 (identical),
// from the proportion of characters the two strings share in order.
func Similarity(a, b string) int {
	if a == b {
		return 100
	}
	return fuzzy.Ratio(a, b)
}

// Scorable is anything that can score its own name against a query.
type Scorable interface {
	Similarity(query string) int
}

// BestMatch scores every candidate against query and returns the highest scorer if it
// reaches minConfidence. Among equal top scores the earliest candidate wins.
func BestMatch[T any](query string, candidates []T, score func(query string, candidate T) int, minConfidence int) (T, bool) {
	var best T
	bestScore := -1
	for _, c := range candidates {
		if s := score(query, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore < minConfidence {
		var zero T
		return zero, false
	}
	return best, true
}

// BestScorable is BestMatch using each candidate's own Similarity method.
func BestScorable[T Scorable](query string, candidates []T, minConfidence int) (T, bool) {
	return BestMatch(query, candidates, func(q string, c T) int { return c.Similarity(q) }, minConfidence)
}

// BestString matches query against plain strings, ignoring case.
func BestString(query string, candidates []string, minConfidence int) (string, bool) {
	q := strings.ToUpper(query)
	return BestMatch(q, candidates, func(q, c string) int { return Similarity(q, strings.ToUpper(c)) }, minConfidence)
}
