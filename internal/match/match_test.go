package match

import "testing"

var sampleNames = []string{
	"Kennington",
	"Marylebone Road",
	"Oxford Circus",
	"Elephant & Castle",
	"Walthamstow Central",
}

func TestSimilarity_Identical(t *testing.T) {
	for _, s := range sampleNames {
		if got := Similarity(s, s); got != 100 {
			t.Errorf("Similarity(%q, %q) = %d, want 100", s, s, got)
		}
	}
}

func TestSimilarity_OneCharacterShort(t *testing.T) {
	for _, s := range sampleNames {
		short := s[:len(s)-1]
		if got := Similarity(s, short); got < 90 {
			t.Errorf("Similarity(%q, %q) = %d, want >= 90", s, short, got)
		}
	}
}

func TestSimilarity_DisjointAlphabet(t *testing.T) {
	tests := []struct{ a, b string }{
		{"abcdefghij", "zzzzzzzzzz"},
		{"KENNINGTON", "qqqqqqqqqqqqqqq"},
		{"12345", "abcde"},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != 0 {
			t.Errorf("Similarity(%q, %q) = %d, want 0", tt.a, tt.b, got)
		}
	}
}

func TestBestString_PicksClosestPrefix(t *testing.T) {
	for _, s := range []string{"Kennington", "Marylebone Road"} {
		candidates := []string{s[:3], s[:5], s[:9], "zzzzzzzzzz"}
		got, ok := BestString(s, candidates, DefaultMinConfidence)
		if !ok || got != s[:9] {
			t.Errorf("BestString(%q, %q) = (%q, %v), want (%q, true)", s, candidates, got, ok, s[:9])
		}
	}
}

func TestBestMatch_BelowConfidence(t *testing.T) {
	got, ok := BestString("Kennington", []string{"zzzzzzzzzz", "Ke", "qqqq"}, DefaultMinConfidence)
	if ok {
		t.Errorf("BestString() = %q, true; want no match", got)
	}
}

func TestBestMatch_Empty(t *testing.T) {
	if _, ok := BestString("Kennington", nil, DefaultMinConfidence); ok {
		t.Error("BestString with no candidates reported a match")
	}
}

func TestBestMatch_NeverBelowMinimum(t *testing.T) {
	scores := map[string]int{"a": 10, "b": 69, "c": 70, "d": 55}
	score := func(_ string, c string) int { return scores[c] }
	for _, minimum := range []int{0, 50, 70, 71, 100} {
		got, ok := BestMatch("q", []string{"a", "b", "c", "d"}, score, minimum)
		if ok && scores[got] < minimum {
			t.Errorf("BestMatch(min=%d) = %q scoring %d", minimum, got, scores[got])
		}
		if !ok && minimum <= 70 {
			t.Errorf("BestMatch(min=%d) found nothing, want c", minimum)
		}
	}
}

func TestBestMatch_TieGoesToFirst(t *testing.T) {
	score := func(string, string) int { return 80 }
	got, ok := BestMatch("q", []string{"first", "second", "third"}, score, DefaultMinConfidence)
	if !ok || got != "first" {
		t.Errorf("BestMatch() = (%q, %v), want (first, true)", got, ok)
	}
}

type namedThing string

func (n namedThing) Similarity(query string) int {
	return StationNameSimilarity(query, string(n))
}

func TestBestScorable(t *testing.T) {
	candidates := []namedThing{"Kennington", "King's Cross St. Pancras", "Kentish Town"}
	got, ok := BestScorable("Kings Cross", candidates, DefaultMinConfidence)
	if !ok || got != "King's Cross St. Pancras" {
		t.Errorf("BestScorable() = (%q, %v), want King's Cross St. Pancras", got, ok)
	}
}
