package storage

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownColumn is returned when a filter or query names a column the table lacks.
var ErrUnknownColumn = errors.New("unknown column")

// BusColumn names a filterable column of the bus_stops table.
type BusColumn string

const (
	BusName     BusColumn = "name"
	BusCode     BusColumn = "bus_stop_code"
	BusRoute    BusColumn = "route"
	BusRun      BusColumn = "run"
	BusSequence BusColumn = "sequence"
	BusHeading  BusColumn = "heading"
)

// StationColumn names a filterable column of the stations table.
type StationColumn string

const (
	StationName StationColumn = "name"
	StationCode StationColumn = "code"
	StationLine StationColumn = "line"
)

// Column is the set of per-table column enumerations.
type Column interface {
	BusColumn | StationColumn
}

type term[C Column] struct {
	col C
	val any
}

// Filter is a conjunction of column = value constraints.
type Filter[C Column] struct {
	terms []term[C]
}

// Where starts a filter with a single constraint.
func Where[C Column](col C, val any) Filter[C] {
	return Filter[C]{}.And(col, val)
}

// And returns a copy of f with one more constraint.
func (f Filter[C]) And(col C, val any) Filter[C] {
	return Filter[C]{terms: append(slices.Clip(f.terms), term[C]{col: col, val: val})}
}

// Len is the number of constraints.
func (f Filter[C]) Len() int {
	return len(f.terms)
}

// where renders the filter as a WHERE clause with positional parameters, in the
// order the constraints were added.
func (f Filter[C]) where(columns map[C]bool) (string, []any, error) {
	if len(f.terms) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(f.terms))
	args := make([]any, 0, len(f.terms))
	for _, t := range f.terms {
		if !columns[t.col] {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownColumn, t.col)
		}
		parts = append(parts, string(t.col)+" = ?")
		args = append(args, t.val)
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}
