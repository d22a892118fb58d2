package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"transitbot/internal/geo"
	"transitbot/internal/match"
	"transitbot/internal/transit"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Table gives typed, filtered access to one mode's location table.
type Table[R match.Scorable, C Column] struct {
	db           *DB
	name         string
	columns      map[C]bool
	selectList   string
	scan         func(rowScanner) (R, error)
	withDistance func(R, float64) R
}

// BusStops is the bus stop table.
func (db *DB) BusStops() *Table[BusStop, BusColumn] {
	return &Table[BusStop, BusColumn]{
		db:   db,
		name: "bus_stops",
		columns: map[BusColumn]bool{
			BusName: true, BusCode: true, BusRoute: true,
			BusRun: true, BusSequence: true, BusHeading: true,
		},
		selectList: "name, bus_stop_code, route, run, sequence, heading, location_easting, location_northing",
		scan: func(r rowScanner) (BusStop, error) {
			var s BusStop
			err := r.Scan(&s.Name, &s.Code, &s.Route, &s.Run, &s.Sequence, &s.Heading, &s.Easting, &s.Northing)
			return s, err
		},
		withDistance: func(s BusStop, d float64) BusStop {
			s.Distance = d
			return s
		},
	}
}

// Stations is the rail station table.
func (db *DB) Stations() *Table[Station, StationColumn] {
	return &Table[Station, StationColumn]{
		db:   db,
		name: "stations",
		columns: map[StationColumn]bool{
			StationName: true, StationCode: true, StationLine: true,
		},
		selectList: "name, code, line, location_easting, location_northing, inner_rail, outer_rail",
		scan: func(r rowScanner) (Station, error) {
			var s Station
			err := r.Scan(&s.Name, &s.Code, &s.Line, &s.Easting, &s.Northing, &s.Inner, &s.Outer)
			return s, err
		},
		withDistance: func(s Station, d float64) Station {
			s.Distance = d
			return s
		},
	}
}

// FindClosest returns the record nearest to a GPS position among those matching f,
// with its distance in meters. It returns nil if nothing matches.
func (t *Table[R, C]) FindClosest(ctx context.Context, pos transit.Position, f Filter[C]) (*R, error) {
	e, n := geo.WGS84ToEastingNorthing(pos.Lat, pos.Lon)
	return t.FindClosestGrid(ctx, e, n, f)
}

// FindClosestGrid is FindClosest for a point already projected to the National Grid.
func (t *Table[R, C]) FindClosestGrid(ctx context.Context, easting, northing int, f Filter[C]) (*R, error) {
	where, args, err := f.where(t.columns)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT %s,
		       (location_easting - ?)*(location_easting - ?) + (location_northing - ?)*(location_northing - ?) AS dist_sq
		FROM %s%s
		ORDER BY dist_sq, rowid
		LIMIT 1`, t.selectList, t.name, where)
	args = append([]any{easting, easting, northing, northing}, args...)

	var (
		rec    R
		distSq int64
	)
	row := t.db.QueryRowContext(ctx, query, args...)
	rec, err = t.scan(distanceScanner{row: row, distSq: &distSq})
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("closest in %s: %w", t.name, err)
	}
	rec = t.withDistance(rec, math.Sqrt(float64(distSq)))
	return &rec, nil
}

// distanceScanner appends the computed squared distance column to a record scan.
type distanceScanner struct {
	row    *sql.Row
	distSq *int64
}

func (d distanceScanner) Scan(dest ...any) error {
	return d.row.Scan(append(dest, d.distSq)...)
}

// FindFuzzyMatch returns the record matching f whose name best matches query, or nil
// if none scores at least minConfidence. Ties go to the earliest row.
func (t *Table[R, C]) FindFuzzyMatch(ctx context.Context, f Filter[C], query string, minConfidence int) (*R, error) {
	candidates, err := t.All(ctx, f)
	if err != nil {
		return nil, err
	}
	best, ok := match.BestScorable(query, candidates, minConfidence)
	if !ok {
		return nil, nil
	}
	return &best, nil
}

// FindExactMatch returns the first row, in insertion order, matching f.
func (t *Table[R, C]) FindExactMatch(ctx context.Context, f Filter[C]) (*R, error) {
	where, args, err := f.where(t.columns)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY rowid LIMIT 1`, t.selectList, t.name, where)
	rec, err := t.scan(t.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("exact match in %s: %w", t.name, err)
	}
	return &rec, nil
}

// All returns every row matching f in insertion order.
func (t *Table[R, C]) All(ctx context.Context, f Filter[C]) ([]R, error) {
	where, args, err := f.where(t.columns)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY rowid`, t.selectList, t.name, where)
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	var recs []R
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// MaxValue returns the largest value of an integer column among rows matching f,
// or 0 if none match.
func (t *Table[R, C]) MaxValue(ctx context.Context, col C, f Filter[C]) (int, error) {
	if !t.columns[col] {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	where, args, err := f.where(t.columns)
	if err != nil {
		return 0, err
	}
	var highest int
	query := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) FROM %s%s`, col, t.name, where)
	if err := t.db.QueryRowContext(ctx, query, args...).Scan(&highest); err != nil {
		return 0, fmt.Errorf("max %s in %s: %w", col, t.name, err)
	}
	return highest, nil
}

// CheckExistence reports whether any row has col = value.
func (t *Table[R, C]) CheckExistence(ctx context.Context, col C, value any) (bool, error) {
	if !t.columns[col] {
		return false, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)`, t.name, col)
	if err := t.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s in %s: %w", col, t.name, err)
	}
	return exists, nil
}

// Distinct returns the sorted distinct values of col among rows matching f.
func (t *Table[R, C]) Distinct(ctx context.Context, col C, f Filter[C]) ([]string, error) {
	if !t.columns[col] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
	}
	where, args, err := f.where(t.columns)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s%s ORDER BY %s`, col, t.name, where, col)
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("distinct %s in %s: %w", col, t.name, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", col, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// LinesServing returns the codes of every line calling at a station code.
func (db *DB) LinesServing(ctx context.Context, stationCode string) ([]string, error) {
	return db.Stations().Distinct(ctx, StationLine, Where(StationCode, stationCode))
}
