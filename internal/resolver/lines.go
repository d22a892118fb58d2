package resolver

import (
	"strings"

	"transitbot/internal/match"
	"transitbot/internal/transit"
)

// Line is a rail line with live departure data.
type Line struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

var lineNames = []string{
	"Bakerloo", "Central", "Circle", "District", "DLR", "Hammersmith & City",
	"Jubilee", "Metropolitan", "Northern", "Piccadilly", "Victoria", "Waterloo & City",
}

var lineAliases = buildLineAliases()

func buildLineAliases() map[string]string {
	aliases := make(map[string]string)
	add := func(alias, name string) { aliases[strings.ToLower(alias)] = name }
	for _, name := range lineNames {
		add(name, name)
		add(name[:3], name)
		if strings.Contains(name, "&") {
			add(strings.ReplaceAll(name, "&", "and"), name)
		}
	}
	add("W&C", "Waterloo & City")
	add("H&C", "Hammersmith & City")
	add("Docklands Light Railway", "DLR")
	return aliases
}

func newLine(name string) Line {
	code := name[:1]
	switch name {
	case "DLR":
		code = "DLR"
	case "Circle":
		code = "O"
	}
	return Line{Name: name, Code: code}
}

// LookupLine resolves a user's name for a line: an alias ("Met", "W&C"), the full name
// with or without a trailing "Line", or failing those a confident fuzzy match.
func LookupLine(token string) (Line, error) {
	name := strings.TrimSpace(token)
	if n := len(name) - len(" line"); n > 0 && strings.EqualFold(name[n:], " line") {
		name = name[:n]
	}
	if canonical, ok := lineAliases[strings.ToLower(name)]; ok {
		return newLine(canonical), nil
	}
	if canonical, ok := match.BestString(name, lineNames, match.DefaultMinConfidence); ok {
		return newLine(canonical), nil
	}
	return Line{}, transit.NewError(transit.LineNotRecognized, token)
}

// DisplayName is the line's name as written in messages: "Central Line", "DLR".
func (l Line) DisplayName() string {
	if l.Name == "DLR" {
		return l.Name
	}
	return l.Name + " Line"
}
