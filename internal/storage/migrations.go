package storage

import "fmt"

// migrate creates the location schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Debug("database migrations applied")
	return nil
}

var migrations = []string{
	// One row per (route, run, stop); a stop code recurs on every run calling there.
	`CREATE TABLE IF NOT EXISTS bus_stops (
		name              TEXT NOT NULL,
		bus_stop_code     TEXT NOT NULL,
		route             TEXT NOT NULL,
		run               INTEGER NOT NULL,
		sequence          INTEGER NOT NULL,
		heading           INTEGER NOT NULL DEFAULT 0,
		location_easting  INTEGER NOT NULL,
		location_northing INTEGER NOT NULL
	)`,

	// One row per (station, line). inner_rail and outer_rail hold the compass direction
	// of a loop line's inner and outer rail platforms.
	`CREATE TABLE IF NOT EXISTS stations (
		name              TEXT NOT NULL,
		code              TEXT NOT NULL,
		line              TEXT NOT NULL,
		location_easting  INTEGER NOT NULL,
		location_northing INTEGER NOT NULL,
		inner_rail        TEXT NOT NULL DEFAULT '',
		outer_rail        TEXT NOT NULL DEFAULT ''
	)`,

	// Build metadata (source file dates, built_at)
	`CREATE TABLE IF NOT EXISTS store_metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_bus_stops_route_run ON bus_stops(route, run, sequence)`,
	`CREATE INDEX IF NOT EXISTS idx_bus_stops_code ON bus_stops(bus_stop_code, route)`,
	`CREATE INDEX IF NOT EXISTS idx_stations_line ON stations(line)`,
	`CREATE INDEX IF NOT EXISTS idx_stations_code ON stations(code)`,
}
