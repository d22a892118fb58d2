package locations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"transitbot/internal/network"
	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

// Stations looks up rail stations and asks route questions of the network graph.
// A nil graph disables route validation.
type Stations struct {
	db     *storage.DB
	table  *storage.Table[storage.Station, storage.StationColumn]
	graph  *network.Network
	logger *slog.Logger
}

// NewStations wraps the station table of db and an optional network graph.
func NewStations(db *storage.DB, graph *network.Network, logger *slog.Logger) *Stations {
	return &Stations{db: db, table: db.Stations(), graph: graph, logger: logger}
}

// NetworkAvailable reports whether route questions can be answered.
func (s *Stations) NetworkAvailable() bool {
	return s.graph.Available()
}

// Closest returns the station on a line nearest to pos, or nil.
func (s *Stations) Closest(ctx context.Context, line string, pos transit.Position) (*storage.Station, error) {
	return s.table.FindClosest(ctx, pos, storage.Where(storage.StationLine, line))
}

// Named returns the station on a line whose name best matches query, or nil if
// nothing scores at least minConfidence.
func (s *Stations) Named(ctx context.Context, line, query string, minConfidence int) (*storage.Station, error) {
	st, err := s.table.FindFuzzyMatch(ctx, storage.Where(storage.StationLine, line), query, minConfidence)
	if err != nil {
		return nil, err
	}
	if st != nil {
		s.logger.Debug("station matched", "query", query, "line", line, "station", st.Name, "code", st.Code)
	}
	return st, nil
}

// LinesServing returns the codes of the lines calling at a station.
func (s *Stations) LinesServing(ctx context.Context, code string) ([]string, error) {
	return s.db.LinesServing(ctx, code)
}

// DescribeRoute lists the platforms of the quickest journey between two stations.
func (s *Stations) DescribeRoute(origin, destination, via, line string) ([]network.Hop, error) {
	return s.graph.DescribeRoute(origin, destination, via, line)
}

// LengthOfRoute is the journey time in minutes between two stations.
func (s *Stations) LengthOfRoute(origin, destination, via, line string) (float64, error) {
	return s.graph.LengthOfRoute(origin, destination, via, line)
}

// DirectRouteExists reports whether one train on line runs from origin to destination,
// optionally through via and calling at mustStopAt.
func (s *Stations) DirectRouteExists(origin, destination, via, line, mustStopAt string) (bool, error) {
	ok, err := s.graph.DirectRouteExists(origin, destination, via, line, mustStopAt)
	if err != nil {
		return false, fmt.Errorf("direct route %s to %s on %s: %w", origin, destination, line, err)
	}
	return ok, nil
}

var compassBound = regexp.MustCompile(`(?i)^(north|east|south|west)(bound)?$`)

// IsCorrectDirection reports whether a train on line leaving origin in direction
// ("Eastbound", "East" and so on) heads for destination. Where the graph knows both
// stations there must be a direct route.
// A platform that names its direction decides; otherwise the direction has to account
// for at least a third of the straight-line distance between the two stations.
func (s *Stations) IsCorrectDirection(direction string, origin, destination storage.Station, line string) (bool, error) {
	m := compassBound.FindStringSubmatch(direction)
	if m == nil {
		return false, nil
	}
	want := strings.ToLower(m[1])

	if s.NetworkAvailable() {
		direct, err := s.DirectRouteExists(origin.Name, destination.Name, "", line, "")
		switch {
		case errors.Is(err, network.ErrUnknownLine), errors.Is(err, network.ErrUnknownNode):
			return alongAxis(want, origin, destination), nil
		case err != nil || !direct:
			return false, err
		}
		hops, err := s.DescribeRoute(origin.Name, destination.Name, "", line)
		if err != nil {
			return false, err
		}
		if len(hops) > 0 {
			if p := compassBound.FindStringSubmatch(hops[0].Direction); p != nil {
				return strings.EqualFold(p[1], want), nil
			}
		}
	}

	return alongAxis(want, origin, destination), nil
}

// alongAxis reports whether the compass point want accounts for at least a third of
// the straight-line distance from origin to destination.
func alongAxis(want string, origin, destination storage.Station) bool {
	de := float64(destination.Easting - origin.Easting)
	dn := float64(destination.Northing - origin.Northing)
	dist := math.Hypot(de, dn)
	if dist == 0 {
		return false
	}
	var along float64
	switch want {
	case "north":
		along = dn
	case "south":
		along = -dn
	case "east":
		along = de
	case "west":
		along = -de
	}
	return along > 0 && 3*along >= dist
}
