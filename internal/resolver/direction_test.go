package resolver

import (
	"testing"

	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

func TestNormaliseDirection(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"N", "North", true},
		{"nb", "North", true},
		{"Eastbound", "East", true},
		{"EAST", "East", true},
		{"S/B", "South", true},
		{"w.", "West", true},
		{"West Bound", "West", true},
		{"Up", "", false},
		{"NE", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormaliseDirection(tt.text)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormaliseDirection(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestHeadingFilter(t *testing.T) {
	stops := []storage.BusStop{
		{Code: "east", Run: 1, Heading: 80},
		{Code: "west", Run: 2, Heading: 235},
	}
	tests := []struct {
		cardinal string
		want     []string
	}{
		{"East", []string{"east"}},
		{"West", []string{"west"}},
		{"South", []string{"west"}},
		{"North", []string{"east", "west"}},
	}
	for _, tt := range tests {
		got := headingFilter(stops, tt.cardinal)
		var codes []string
		for _, s := range got {
			codes = append(codes, s.Code)
		}
		if len(codes) != len(tt.want) {
			t.Errorf("headingFilter(%s) = %v, want %v", tt.cardinal, codes, tt.want)
			continue
		}
		for i := range codes {
			if codes[i] != tt.want[i] {
				t.Errorf("headingFilter(%s) = %v, want %v", tt.cardinal, codes, tt.want)
				break
			}
		}
	}
}

func TestCoverageCheck(t *testing.T) {
	tests := []struct {
		name  string
		pos   transit.Position
		where string
	}{
		{"Trafalgar Square", transit.Position{Lat: 51.5074, Lon: -0.1278}, ""},
		{"Paris", transit.Position{Lat: 48.8566, Lon: 2.3522}, "United Kingdom"},
		{"Edinburgh", transit.Position{Lat: 55.9533, Lon: -3.1883}, "London area"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := London.Check(tt.pos)
			if tt.where == "" {
				if err != nil {
					t.Errorf("Check(%v) error: %v", tt.pos, err)
				}
				return
			}
			want := transit.NewError(transit.NotInCoverageArea, tt.where)
			if err == nil || err.Error() != want.Error() {
				t.Errorf("Check(%v) = %v, want %v", tt.pos, err, want)
			}
		})
	}
}
