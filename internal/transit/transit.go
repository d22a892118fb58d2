// Package transit holds the types shared by the location store, the resolver and
// the live-data collaborators.
package transit

import "fmt"

// Position is a WGS84 latitude/longitude as reported by a GPS device.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Position) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// Mode is a transit mode with its own location table.
type Mode string

const (
	Bus  Mode = "bus"
	Rail Mode = "rail"
)
