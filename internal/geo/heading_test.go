package geo

import "testing"

func TestHeadingToDirection(t *testing.T) {
	tests := []struct {
		heading int
		want    string
	}{
		{0, "North"},
		{22, "North"},
		{23, "NE"},
		{45, "NE"},
		{90, "East"},
		{135, "SE"},
		{180, "South"},
		{225, "SW"},
		{270, "West"},
		{315, "NW"},
		{337, "NW"},
		{338, "North"},
		{359, "North"},
		{360, "North"},
	}
	for _, tt := range tests {
		if got := HeadingToDirection(tt.heading); got != tt.want {
			t.Errorf("HeadingToDirection(%d) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}
