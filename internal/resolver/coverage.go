package resolver

import (
	"transitbot/internal/geo"
	"transitbot/internal/transit"
)

// Coverage is the National Grid box, in meters, that positions must fall inside.
type Coverage struct {
	MinEasting, MaxEasting   int
	MinNorthing, MaxNorthing int
}

// London is the default service area.
var London = Coverage{MinEasting: 495000, MaxEasting: 565000, MinNorthing: 145000, MaxNorthing: 205000}

// Check fails with NotInCoverageArea for a position off the National Grid or outside
// the box.
func (c Coverage) Check(pos transit.Position) error {
	e, n := geo.WGS84ToEastingNorthing(pos.Lat, pos.Lon)
	if geo.GridRefNumToLet(e, n, 10) == "" {
		return transit.NewError(transit.NotInCoverageArea, "United Kingdom")
	}
	if e < c.MinEasting || e > c.MaxEasting || n < c.MinNorthing || n > c.MaxNorthing {
		return transit.NewError(transit.NotInCoverageArea, "London area")
	}
	return nil
}
