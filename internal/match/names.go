package match

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	pictograms = regexp.MustCompile(`(?i)<>|#|\[DLR\]|>T<`)

	abbreviations = []struct {
		word *regexp.Regexp
		abbr string
	}{
		{regexp.MustCompile(`\bSQUARE\b`), "SQ"},
		{regexp.MustCompile(`\bAVENUE\b`), "AVE"},
		{regexp.MustCompile(`\bSTREET\b`), "ST"},
		{regexp.MustCompile(`\bROAD\b`), "RD"},
		{regexp.MustCompile(`\bSTATION\b`), "STN"},
		{regexp.MustCompile(`\bPUBLIC HOUSE\b`), "PUB"},
	}

	commonWords = regexp.MustCompile(`\bTHE\b`)
	nonAlnum    = regexp.MustCompile(`[^A-Z0-9]`)
	stationWord = regexp.MustCompile(`(BUS)?STN`)
)

// NormaliseStopName reduces a bus stop name to upper-case letters and digits with
// road suffixes abbreviated, "THE" dropped and transit pictograms removed.
func NormaliseStopName(name string) string {
	s := unidecode.Unidecode(name)
	s = pictograms.ReplaceAllString(s, "")
	s = strings.ToUpper(s)
	for _, a := range abbreviations {
		s = a.word.ReplaceAllString(s, a.abbr)
	}
	s = commonWords.ReplaceAllString(s, "")
	return nonAlnum.ReplaceAllString(s, "")
}

// StopNameSimilarity scores a query against a bus stop name. Queries that name a
// station or bus station match stops whose name starts or ends with it.
func StopNameSimilarity(query, name string) int {
	mine := NormaliseStopName(name)
	theirs := NormaliseStopName(query)
	if mine == theirs {
		return 100
	}

	if stationWord.MatchString(theirs) {
		if strings.HasPrefix(mine, theirs) {
			return 95
		}
		if strings.HasSuffix(mine, theirs) {
			return 94
		}
	}

	q := regexp.QuoteMeta(theirs)
	if regexp.MustCompile("^" + q + "(BUS)?STN").MatchString(mine) {
		return 91
	}
	if regexp.MustCompile(q + "(BUS)?STN$").MatchString(mine) {
		return 90
	}
	return Similarity(mine, theirs)
}

const (
	abbreviatedTrigger = 70
	abbreviatedAccept  = 90
)

// StationNameSimilarity scores a query against a rail station name. A short query that
// matches the start of a longer name ("Kings Cross" against "King's Cross St. Pancras")
// scores on that prefix, capped below an exact match.
func StationNameSimilarity(query, name string) int {
	q := []rune(strings.ToUpper(query))
	n := []rune(strings.ToUpper(name))
	score := Similarity(string(n), string(q))
	if score < abbreviatedTrigger && len(q) < len(n) {
		abbreviated := Similarity(string(n[:len(q)]), string(q))
		if abbreviated >= abbreviatedAccept {
			return min(abbreviated, 99)
		}
	}
	return score
}
