package geo

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantMeters             float64
		tolerance              float64 // allowed error in meters
	}{
		{
			name:       "Charing Cross to Bank (~2.6 km)",
			lat1:       51.5080, lon1: -0.1247,
			lat2:       51.5133, lon2: -0.0886,
			wantMeters: 2_560,
			tolerance:  60,
		},
		{
			name:       "same point returns zero",
			lat1:       51.5080, lon1: -0.1247,
			lat2:       51.5080, lon2: -0.1247,
			wantMeters: 0,
			tolerance:  0.001,
		},
		{
			name:       "north pole to south pole",
			lat1:       90, lon1: 0,
			lat2:       -90, lon2: 0,
			wantMeters: math.Pi * earthRadiusMeters,
			tolerance:  1,
		},
		{
			name:       "equator quarter circumference",
			lat1:       0, lon1: 0,
			lat2:       0, lon2: 90,
			wantMeters: math.Pi / 2 * earthRadiusMeters,
			tolerance:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantMeters) > tt.tolerance {
				t.Errorf("Haversine() = %.1f m, want %.1f m (±%.0f)", got, tt.wantMeters, tt.tolerance)
			}
		})
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := Haversine(51.5080, -0.1247, 51.5133, -0.0886)
	b := Haversine(51.5133, -0.0886, 51.5080, -0.1247)
	if a != b {
		t.Errorf("Haversine not symmetric: %f != %f", a, b)
	}
}

func TestBoundingBoxRadius(t *testing.T) {
	// At the equator, 1 degree lat ≈ 111km and 1 degree lon ≈ 111km
	latDeg, lonDeg := BoundingBoxRadius(0, 111_000)
	if math.Abs(latDeg-1.0) > 0.01 {
		t.Errorf("latDeg at equator for 111km = %f, want ~1.0", latDeg)
	}
	if math.Abs(lonDeg-1.0) > 0.01 {
		t.Errorf("lonDeg at equator for 111km = %f, want ~1.0", lonDeg)
	}

	latDeg60, lonDeg60 := BoundingBoxRadius(60, 1000)
	ratio := lonDeg60 / latDeg60
	if math.Abs(ratio-2) > 0.01 {
		t.Errorf("lonDeg/latDeg ratio at 60° = %f, want ~2", ratio)
	}
}

func TestGridDistance(t *testing.T) {
	tests := []struct {
		e1, n1, e2, n2 int
		want           float64
	}{
		{529600, 179500, 529600, 179500, 0},
		{0, 0, 300, 400, 500},
		{300, 400, 0, 0, 500},
	}
	for _, tt := range tests {
		got := GridDistance(tt.e1, tt.n1, tt.e2, tt.n2)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("GridDistance(%d, %d, %d, %d) = %f, want %f", tt.e1, tt.n1, tt.e2, tt.n2, got, tt.want)
		}
	}
}
