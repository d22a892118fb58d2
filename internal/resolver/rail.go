package resolver

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"transitbot/internal/live"
	"transitbot/internal/locations"
	"transitbot/internal/network"
	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

// ClosureChecker reports stations closed by a service alert.
type ClosureChecker interface {
	ClosureReason(stationCode string) (string, bool)
}

// DepartureSource fetches live departures from a station: by direction for one Tube
// line, or by platform for the DLR.
type DepartureSource interface {
	TubeDepartures(ctx context.Context, station storage.Station, lineCode string) (live.Departures, error)
	DLRDepartures(ctx context.Context, station storage.Station) (live.Departures, error)
}

// Rail resolves line tokens to a station, checking the journey against the network.
type Rail struct {
	stations *locations.Stations
	closures ClosureChecker
	settings Settings
	logger   *slog.Logger
}

// NewRail builds a rail resolver. closures may be nil.
func NewRail(stations *locations.Stations, closures ClosureChecker, settings Settings, logger *slog.Logger) *Rail {
	return &Rail{stations: stations, closures: closures, settings: settings.withDefaults(), logger: logger}
}

// Resolve finds the station on the token's line nearest req's position or matching
// its origin, and a destination or direction to filter departures by.
func (r *Rail) Resolve(ctx context.Context, token string, req Request) (*Resolution, error) {
	line, err := LookupLine(token)
	if err != nil {
		return nil, err
	}

	var station *storage.Station
	switch {
	case req.Position != nil:
		if err := r.settings.Coverage.Check(*req.Position); err != nil {
			return nil, err
		}
		station, err = r.stations.Closest(ctx, line.Code, *req.Position)
	case req.Origin != "":
		station, err = r.stations.Named(ctx, line.Code, req.Origin, r.settings.MinConfidence)
	}
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, transit.NewError(transit.StationNotFound, originText(req), line.DisplayName())
	}
	if !station.HasLiveData() {
		return nil, transit.NewError(transit.StationNotInSystem, station.Name)
	}
	if r.closures != nil {
		if reason, closed := r.closures.ClosureReason(station.Code); closed {
			return nil, transit.NewError(transit.StationClosed, station.Name, reason)
		}
	}

	res := &Resolution{Mode: transit.Rail, Token: token, Line: &line, Station: station}
	switch {
	case req.Destination != "":
		dest, err := r.stations.Named(ctx, line.Code, req.Destination, r.settings.MinConfidence)
		if err != nil {
			return nil, err
		}
		if dest == nil {
			r.logger.Debug("destination not found, not filtering", "line", line.Code, "destination", req.Destination)
			break
		}
		if r.stations.NetworkAvailable() {
			direct, err := r.stations.DirectRouteExists(station.Name, dest.Name, "", line.Code, "")
			switch {
			case errors.Is(err, network.ErrUnknownNode), errors.Is(err, network.ErrUnknownLine):
				r.logger.Debug("route not in network, not validating", "line", line.Code, "error", err)
			case err != nil:
				return nil, err
			case !direct:
				return nil, transit.NewError(transit.NoDirectRoute, station.Name, dest.Name, line.DisplayName())
			}
		}
		res.Destination = dest.Name
	case req.Direction != "":
		cardinal, ok := NormaliseDirection(req.Direction)
		if !ok {
			return nil, transit.NewError(transit.InvalidDirection, req.Direction)
		}
		res.Direction = cardinal + "bound"
	}
	r.logger.Debug("line resolved", "line", line.Name, "station", station.Name, "destination", res.Destination, "direction", res.Direction)
	return res, nil
}

// Departures returns an Enrich step fetching trains from the resolved station. Trains
// terminating there are dropped. With a destination only trains calling at it are
// kept, and with a direction only that direction's. Trains on platforms giving no
// direction, as on the DLR, are kept when their terminus lies the requested way.
func (r *Rail) Departures(src DepartureSource) Enrich {
	return func(ctx context.Context, res *Resolution) (any, error) {
		var (
			deps live.Departures
			err  error
		)
		if res.Line.Code == live.DLRLine {
			deps, err = src.DLRDepartures(ctx, *res.Station)
		} else {
			deps, err = src.TubeDepartures(ctx, *res.Station, res.Line.Code)
		}
		if err != nil {
			return nil, err
		}

		out := make(live.Departures)
		for slot, trains := range deps {
			bound := strings.HasSuffix(slot, "bound")
			switch {
			case bound && res.Direction != "" && slot != res.Direction:
				continue
			case slot == live.UnknownDirection && res.Direction == "":
				continue
			}
			var kept []live.Train
			for _, t := range trains {
				ok, err := r.wanted(ctx, res, t, !bound)
				if err != nil {
					return nil, err
				}
				if ok {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				continue
			}
			if slot == live.UnknownDirection {
				slot = res.Direction
			}
			out[slot] = append(out[slot], kept...)
		}
		if len(out) == 0 {
			return nil, r.nothingShown(res)
		}
		for _, ts := range out {
			slices.SortStableFunc(ts, func(a, b live.Train) int { return cmp.Compare(a.SecondsTo, b.SecondsTo) })
		}
		return out, nil
	}
}

// wanted reports whether train t should be shown. checkHeading asks for its terminus
// to lie in the requested direction, for platforms that do not say which way they go.
func (r *Rail) wanted(ctx context.Context, res *Resolution, t live.Train, checkHeading bool) (bool, error) {
	terminus, err := r.terminus(ctx, res.Line.Code, t.Destination)
	if err != nil {
		return false, err
	}
	if terminus != nil && terminus.Name == res.Station.Name {
		return false, nil
	}
	if checkHeading && res.Direction != "" {
		if terminus == nil {
			return false, nil
		}
		ok, err := r.stations.IsCorrectDirection(res.Direction, *res.Station, *terminus, res.Line.Code)
		if err != nil {
			r.logger.Debug("cannot tell train direction", "terminus", terminus.Name, "direction", res.Direction, "error", err)
			return false, nil
		}
		if !ok {
			return false, nil
		}
	}
	if res.Destination == "" || !r.stations.NetworkAvailable() {
		return true, nil
	}
	if terminus == nil {
		return false, nil
	}
	ok, err := r.stations.DirectRouteExists(res.Station.Name, terminus.Name, res.Destination, res.Line.Code, "")
	if err != nil {
		r.logger.Debug("cannot route train", "terminus", terminus.Name, "via", res.Destination, "error", err)
		return false, nil
	}
	return ok, nil
}

var viaSuffix = regexp.MustCompile(`(?i)\s+(via|\().*$`)

// terminus is the station a train is bound for, or nil.
func (r *Rail) terminus(ctx context.Context, lineCode, destination string) (*storage.Station, error) {
	name := strings.TrimSpace(viaSuffix.ReplaceAllString(destination, ""))
	if name == "" || name == live.UnknownDirection {
		return nil, nil
	}
	return r.stations.Named(ctx, lineCode, name, r.settings.MinConfidence)
}

func (r *Rail) nothingShown(res *Resolution) error {
	line := res.Line.DisplayName()
	switch {
	case res.Destination != "":
		return transit.NewError(transit.NoTrainsShownTo, line, res.Station.Name, res.Destination)
	case res.Direction != "":
		return transit.NewError(transit.NoTrainsShownInDirection, res.Direction, line, res.Station.Name)
	}
	return transit.NewError(transit.NoTrainsShown, line, res.Station.Name)
}
