package resolver

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"transitbot/internal/live"
	"transitbot/internal/locations"
	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

// Geocoder finds candidate points for a free-text place name.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]transit.Position, error)
}

// ArrivalSource fetches live arrivals at a bus stop.
type ArrivalSource interface {
	BusArrivals(ctx context.Context, stopCode, route string) ([]live.Arrival, error)
}

var stopCodePattern = regexp.MustCompile(`^[0-9]{5}$`)

// mainRuns is the usual number of runs of a route, one each way. Only these fall back
// to the geocoder, and only these are reported when nothing is due.
const mainRuns = 2

// Bus resolves bus route tokens to one stop per run.
type Bus struct {
	stops    *locations.BusStops
	geocoder Geocoder
	settings Settings
	logger   *slog.Logger
}

// NewBus builds a bus resolver. geocoder may be nil.
func NewBus(stops *locations.BusStops, geocoder Geocoder, settings Settings, logger *slog.Logger) *Bus {
	return &Bus{stops: stops, geocoder: geocoder, settings: settings.withDefaults(), logger: logger}
}

// Resolve finds where to catch route from req's position, stop code or place name.
func (b *Bus) Resolve(ctx context.Context, token string, req Request) (*Resolution, error) {
	route := strings.ToUpper(strings.TrimSpace(token))
	known, err := b.stops.RouteExists(ctx, route)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, transit.NewError(transit.BusNotRecognized, token)
	}

	var stops []storage.BusStop
	switch origin := strings.TrimSpace(req.Origin); {
	case req.Position != nil:
		if err := b.settings.Coverage.Check(*req.Position); err != nil {
			return nil, err
		}
		stops, err = b.byPosition(ctx, route, *req.Position)
	case stopCodePattern.MatchString(origin):
		stops, err = b.byCode(ctx, route, origin)
	default:
		stops, err = b.byName(ctx, route, origin)
	}
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, transit.NewError(transit.StopNameNotFound, route, originText(req))
	}

	res := &Resolution{Mode: transit.Bus, Token: token, Route: route, Stops: stops}
	switch {
	case req.Destination != "":
		if err := b.towards(ctx, res, req.Destination); err != nil {
			return nil, err
		}
	case req.Direction != "":
		cardinal, ok := NormaliseDirection(req.Direction)
		if !ok {
			return nil, transit.NewError(transit.InvalidDirection, req.Direction)
		}
		res.Direction = cardinal
		res.Stops = headingFilter(res.Stops, cardinal)
	}
	b.logger.Debug("bus route resolved", "route", route, "stops", len(res.Stops), "destination", res.Destination, "direction", res.Direction)
	return res, nil
}

func (b *Bus) byPosition(ctx context.Context, route string, pos transit.Position) ([]storage.BusStop, error) {
	runs, err := b.stops.Runs(ctx, route)
	if err != nil {
		return nil, err
	}
	var stops []storage.BusStop
	for run := 1; run <= runs; run++ {
		stop, err := b.stops.Closest(ctx, route, run, pos)
		if err != nil {
			return nil, err
		}
		if stop != nil {
			stops = append(stops, *stop)
		}
	}
	return stops, nil
}

func (b *Bus) byCode(ctx context.Context, route, code string) ([]storage.BusStop, error) {
	exists, err := b.stops.StopExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, transit.NewError(transit.BadStopID, code)
	}
	stop, err := b.stops.ByCode(ctx, route, code)
	if err != nil {
		return nil, err
	}
	if stop == nil {
		return nil, transit.NewError(transit.StopRouteMismatch, route, code)
	}
	return []storage.BusStop{*stop}, nil
}

// byName matches query against the stop names of each run. The first runs fall back
// to the stop nearest any geocoded point for query when no name matches.
func (b *Bus) byName(ctx context.Context, route, query string) ([]storage.BusStop, error) {
	if query == "" {
		return nil, nil
	}
	runs, err := b.stops.Runs(ctx, route)
	if err != nil {
		return nil, err
	}
	var (
		stops    []storage.BusStop
		points   []transit.Position
		geocoded bool
	)
	for run := 1; run <= runs; run++ {
		stop, err := b.stops.Named(ctx, route, run, query, b.settings.MinConfidence)
		if err != nil {
			return nil, err
		}
		if stop == nil && run <= mainRuns && b.geocoder != nil {
			if !geocoded {
				points = b.geocode(ctx, query)
				geocoded = true
			}
			if stop, err = b.nearestTo(ctx, route, run, points); err != nil {
				return nil, err
			}
		}
		if stop != nil {
			stops = append(stops, *stop)
		}
	}
	return stops, nil
}

func (b *Bus) geocode(ctx context.Context, query string) []transit.Position {
	points, err := b.geocoder.Geocode(ctx, query)
	if err != nil {
		b.logger.Warn("geocoding failed", "query", query, "error", err)
		return nil
	}
	b.logger.Debug("geocoded place", "query", query, "points", len(points))
	return points
}

func (b *Bus) nearestTo(ctx context.Context, route string, run int, points []transit.Position) (*storage.BusStop, error) {
	var best *storage.BusStop
	for _, p := range points {
		stop, err := b.stops.Closest(ctx, route, run, p)
		if err != nil {
			return nil, err
		}
		if stop != nil && (best == nil || stop.Distance < best.Distance) {
			best = stop
		}
	}
	return best, nil
}

// towards keeps the runs on which destination comes after the origin stop. A
// destination matching no run leaves the stops alone. Destinations are found the
// same way as origins, so a stop code must name a stop on the route.
func (b *Bus) towards(ctx context.Context, res *Resolution, destination string) error {
	var (
		dests []storage.BusStop
		err   error
	)
	if code := strings.TrimSpace(destination); stopCodePattern.MatchString(code) {
		dests, err = b.byCode(ctx, res.Route, code)
	} else {
		dests, err = b.byName(ctx, res.Route, destination)
	}
	var te *transit.Error
	if errors.As(err, &te) {
		b.logger.Debug("destination stop unusable, not filtering", "route", res.Route, "destination", destination, "error", err)
		return nil
	}
	if err != nil {
		return err
	}
	if len(dests) == 0 {
		b.logger.Debug("destination not found, not filtering", "route", res.Route, "destination", destination)
		return nil
	}
	later := make(map[int]bool)
	for _, origin := range res.Stops {
		for _, d := range dests {
			if d.Run == origin.Run && d.Sequence > origin.Sequence {
				later[origin.Run] = true
			}
		}
	}
	var kept []storage.BusStop
	for _, s := range res.Stops {
		if later[s.Run] {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return transit.NewError(transit.NoBusesShownTo, res.Route, destination)
	}
	res.Stops = kept
	res.Destination = destination
	return nil
}

// headingFilter keeps stops whose buses leave heading toward cardinal, or all of them
// if none do.
func headingFilter(stops []storage.BusStop, cardinal string) []storage.BusStop {
	var kept []storage.BusStop
	for _, s := range stops {
		if headsToward(s.Direction(), cardinal) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return stops
	}
	return kept
}

// StopArrivals is the next buses at one resolved stop.
type StopArrivals struct {
	Stop     storage.BusStop `json:"stop"`
	Arrivals []live.Arrival  `json:"arrivals"`
}

// Departures returns an Enrich step fetching arrivals at every resolved stop. Runs
// beyond the first two are dropped when nothing is due there.
func (b *Bus) Departures(src ArrivalSource) Enrich {
	return func(ctx context.Context, res *Resolution) (any, error) {
		var (
			out   []StopArrivals
			total int
		)
		for _, stop := range res.Stops {
			arrivals, err := src.BusArrivals(ctx, stop.Code, res.Route)
			if err != nil {
				return nil, err
			}
			if len(arrivals) == 0 && stop.Run > mainRuns {
				continue
			}
			out = append(out, StopArrivals{Stop: stop, Arrivals: arrivals})
			total += len(arrivals)
		}
		if total == 0 {
			if res.Destination != "" {
				return nil, transit.NewError(transit.NoBusesShownTo, res.Route, res.Destination)
			}
			return nil, transit.NewError(transit.NoBusesShown, res.Route)
		}
		return out, nil
	}
}
