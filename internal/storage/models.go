package storage

import (
	"regexp"
	"strings"

	"transitbot/internal/geo"
	"transitbot/internal/match"
)

// BusStop is one stop on one run of a bus route.
type BusStop struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Route    string  `json:"route"`
	Run      int     `json:"run"`
	Sequence int     `json:"sequence"`
	Heading  int     `json:"heading"`
	Easting  int     `json:"easting"`
	Northing int     `json:"northing"`
	Distance float64 `json:"distance,omitempty"`
}

// Similarity scores query against the stop's name.
func (s BusStop) Similarity(query string) int {
	return match.StopNameSimilarity(query, s.Name)
}

// Direction is the compass point buses are heading when they leave the stop.
func (s BusStop) Direction() string {
	return geo.HeadingToDirection(s.Heading)
}

// NoLiveDataCode marks a station that the live departure feed does not cover.
const NoLiveDataCode = "XXX"

// Station is a rail station served by one line.
type Station struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Line     string  `json:"line"`
	Easting  int     `json:"easting"`
	Northing int     `json:"northing"`
	Inner    string  `json:"inner,omitempty"`
	Outer    string  `json:"outer,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// Similarity scores query against the station's name.
func (s Station) Similarity(query string) int {
	return match.StationNameSimilarity(query, s.Name)
}

// HasLiveData reports whether departures can be fetched for the station.
func (s Station) HasLiveData() bool {
	return s.Code != NoLiveDataCode
}

var (
	boundPlatform = regexp.MustCompile(`(?i)(north|east|south|west)bound`)
	railPlatform  = regexp.MustCompile(`(?i)(inner|outer) rail`)
)

// DirectionForPlatform turns a live-feed platform name into a compass direction such
// as "Eastbound". Inner and outer rail platforms use the station's own aliases.
// Platforms that say neither are "Unknown".
func (s Station) DirectionForPlatform(platform string) string {
	if m := boundPlatform.FindStringSubmatch(platform); m != nil {
		return capitalise(m[1]) + "bound"
	}
	if m := railPlatform.FindStringSubmatch(platform); m != nil {
		alias := s.Inner
		if strings.EqualFold(m[1], "outer") {
			alias = s.Outer
		}
		if alias != "" {
			return capitalise(alias) + "bound"
		}
	}
	return "Unknown"
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
