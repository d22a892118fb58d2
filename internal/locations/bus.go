// Package locations answers the questions the resolver asks of the location
// database: nearest and best-named stops per route run, stations per line, and
// whether a journey on the rail network is direct and heading the right way.
package locations

import (
	"context"
	"fmt"
	"log/slog"

	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

// BusStops looks up stops along bus routes.
type BusStops struct {
	table  *storage.Table[storage.BusStop, storage.BusColumn]
	logger *slog.Logger
}

// NewBusStops wraps the bus stop table of db.
func NewBusStops(db *storage.DB, logger *slog.Logger) *BusStops {
	return &BusStops{table: db.BusStops(), logger: logger}
}

func onRun(route string, run int) storage.Filter[storage.BusColumn] {
	return storage.Where(storage.BusRoute, route).And(storage.BusRun, run)
}

// RouteExists reports whether any stop is served by route.
func (b *BusStops) RouteExists(ctx context.Context, route string) (bool, error) {
	return b.table.CheckExistence(ctx, storage.BusRoute, route)
}

// StopExists reports whether a stop code is known on any route.
func (b *BusStops) StopExists(ctx context.Context, code string) (bool, error) {
	return b.table.CheckExistence(ctx, storage.BusCode, code)
}

// Runs is the number of directional runs a route has. Runs are numbered from 1.
func (b *BusStops) Runs(ctx context.Context, route string) (int, error) {
	n, err := b.table.MaxValue(ctx, storage.BusRun, storage.Where(storage.BusRoute, route))
	if err != nil {
		return 0, fmt.Errorf("runs of route %s: %w", route, err)
	}
	return n, nil
}

// Closest returns the stop on one run of a route nearest to pos, or nil.
func (b *BusStops) Closest(ctx context.Context, route string, run int, pos transit.Position) (*storage.BusStop, error) {
	return b.table.FindClosest(ctx, pos, onRun(route, run))
}

// Named returns the stop on one run of a route whose name best matches query, or
// nil if nothing scores at least minConfidence.
func (b *BusStops) Named(ctx context.Context, route string, run int, query string, minConfidence int) (*storage.BusStop, error) {
	stop, err := b.table.FindFuzzyMatch(ctx, onRun(route, run), query, minConfidence)
	if err != nil {
		return nil, err
	}
	if stop != nil {
		b.logger.Debug("bus stop matched", "query", query, "route", route, "run", run, "stop", stop.Name, "code", stop.Code)
	}
	return stop, nil
}

// ByCode returns the first stored row for a stop code on route, or nil if the route
// does not call there.
func (b *BusStops) ByCode(ctx context.Context, route, code string) (*storage.BusStop, error) {
	return b.table.FindExactMatch(ctx, storage.Where(storage.BusCode, code).And(storage.BusRoute, route))
}
