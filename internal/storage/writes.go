package storage

import (
	"context"
	"fmt"
)

// InsertBusStops appends stops to the bus_stops table in a single transaction.
func (db *DB) InsertBusStops(ctx context.Context, stops []BusStop) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bus_stops (name, bus_stop_code, route, run, sequence, heading, location_easting, location_northing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range stops {
		if _, err := stmt.ExecContext(ctx, s.Name, s.Code, s.Route, s.Run, s.Sequence, s.Heading, s.Easting, s.Northing); err != nil {
			return fmt.Errorf("insert bus stop %s: %w", s.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	db.logger.Debug("bus stops inserted", "count", len(stops))
	return nil
}

// InsertStations appends stations to the stations table in a single transaction.
func (db *DB) InsertStations(ctx context.Context, stations []Station) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stations (name, code, line, location_easting, location_northing, inner_rail, outer_rail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range stations {
		if _, err := stmt.ExecContext(ctx, s.Name, s.Code, s.Line, s.Easting, s.Northing, s.Inner, s.Outer); err != nil {
			return fmt.Errorf("insert station %s: %w", s.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	db.logger.Debug("stations inserted", "count", len(stations))
	return nil
}
