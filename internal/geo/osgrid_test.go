package geo

import (
	"math"
	"testing"
)

// St James's Park station.
const (
	fixtureLat      = 51.4995893
	fixtureLon      = -0.1342974
	fixtureOSLat    = 51.4990781
	fixtureOSLon    = -0.1326920
	fixtureEasting  = 529600
	fixtureNorthing = 179500
	fixtureGridRef  = "TQ2960079500"
	degreeTolerance = 1e-7
)

func TestConvertWGS84ToOSGB36(t *testing.T) {
	lat, lon, _ := ConvertWGS84ToOSGB36(fixtureLat, fixtureLon, 0)
	if math.Abs(lat-fixtureOSLat) > degreeTolerance || math.Abs(lon-fixtureOSLon) > degreeTolerance {
		t.Errorf("ConvertWGS84ToOSGB36(%v, %v) = (%v, %v), want (%v, %v)",
			fixtureLat, fixtureLon, lat, lon, fixtureOSLat, fixtureOSLon)
	}
}

func TestLatLonToOSGrid(t *testing.T) {
	e, n := LatLonToOSGrid(fixtureOSLat, fixtureOSLon)
	if e != fixtureEasting || n != fixtureNorthing {
		t.Errorf("LatLonToOSGrid() = (%d, %d), want (%d, %d)", e, n, fixtureEasting, fixtureNorthing)
	}
}

func TestWGS84ToEastingNorthing(t *testing.T) {
	e, n := WGS84ToEastingNorthing(fixtureLat, fixtureLon)
	if e != fixtureEasting || n != fixtureNorthing {
		t.Errorf("WGS84ToEastingNorthing() = (%d, %d), want (%d, %d)", e, n, fixtureEasting, fixtureNorthing)
	}
}

func TestGridRefNumToLet(t *testing.T) {
	tests := []struct {
		name   string
		e, n   int
		digits int
		want   string
	}{
		{"St James's Park", fixtureEasting, fixtureNorthing, 10, fixtureGridRef},
		{"six figure", fixtureEasting, fixtureNorthing, 6, "TQ296795"},
		{"Ben Nevis", 216600, 771200, 10, "NN1660071200"},
		{"Land's End", 134200, 25200, 6, "SW342252"},
		{"west of the grid", -1, 179500, 10, ""},
		{"east of the grid", 700000, 179500, 10, ""},
		{"north of the grid", 300000, 1300000, 10, ""},
		{"south of the grid", 300000, -5, 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GridRefNumToLet(tt.e, tt.n, tt.digits)
			if got != tt.want {
				t.Errorf("GridRefNumToLet(%d, %d, %d) = %q, want %q", tt.e, tt.n, tt.digits, got, tt.want)
			}
		})
	}
}

func TestUKPositionsHaveGridRefs(t *testing.T) {
	points := [][2]float64{
		{51.5074, -0.1278}, // Trafalgar Square
		{53.4808, -2.2426}, // Manchester
		{55.9533, -3.1883}, // Edinburgh
		{50.3755, -4.1427}, // Plymouth
		{52.6309, 1.2974},  // Norwich
	}
	for _, p := range points {
		e, n := WGS84ToEastingNorthing(p[0], p[1])
		if ref := GridRefNumToLet(e, n, 10); ref == "" {
			t.Errorf("GridRefNumToLet for (%v, %v) -> (%d, %d) is empty", p[0], p[1], e, n)
		}
	}
}

func TestOutsideUKHasNoGridRef(t *testing.T) {
	// New York
	e, n := WGS84ToEastingNorthing(40.7128, -74.0060)
	if ref := GridRefNumToLet(e, n, 10); ref != "" {
		t.Errorf("GridRefNumToLet for New York = %q, want empty", ref)
	}
}
