package storage_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"transitbot/internal/londontest"
	"transitbot/internal/match"
	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

func position(name string) transit.Position {
	lat, lon := londontest.Position(name)
	return transit.Position{Lat: lat, Lon: lon}
}

func TestFindClosestStation(t *testing.T) {
	db := londontest.OpenStore(t)
	ctx := context.Background()
	stations := db.Stations()

	tests := []struct {
		name     string
		filter   storage.Filter[storage.StationColumn]
		wantCode string
		wantLine string
	}{
		{"any line, first row on a tie", storage.Filter[storage.StationColumn]{}, "BNK", "C"},
		{"Northern line", storage.Where(storage.StationLine, "N"), "BNK", "N"},
		{"Victoria line", storage.Where(storage.StationLine, "V"), "KXX", "V"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stations.FindClosest(ctx, position("Bank"), tt.filter)
			if err != nil {
				t.Fatalf("FindClosest() error: %v", err)
			}
			if got == nil {
				t.Fatal("FindClosest() = nil")
			}
			if got.Code != tt.wantCode || got.Line != tt.wantLine {
				t.Errorf("FindClosest() = %s/%s, want %s/%s", got.Code, got.Line, tt.wantCode, tt.wantLine)
			}
		})
	}

	none, err := stations.FindClosest(ctx, position("Bank"), storage.Where(storage.StationLine, "Z"))
	if err != nil || none != nil {
		t.Errorf("FindClosest(no rows) = %v, %v; want nil, nil", none, err)
	}
}

func TestFindClosestBusStopDistance(t *testing.T) {
	db := londontest.OpenStore(t)
	ctx := context.Background()
	stops := db.BusStops()
	at := transit.Position{Lat: 51.5074, Lon: -0.1278} // Trafalgar Square

	same, err := stops.FindClosest(ctx, at, storage.Where(storage.BusRoute, "15").And(storage.BusRun, 1))
	if err != nil {
		t.Fatal(err)
	}
	if same == nil || same.Code != "58848" || same.Distance > 1 {
		t.Errorf("FindClosest(run 1) = %+v, want stop 58848 at 0m", same)
	}

	across, err := stops.FindClosest(ctx, at, storage.Where(storage.BusRoute, "15").And(storage.BusRun, 2))
	if err != nil {
		t.Fatal(err)
	}
	if across == nil || across.Code != "58849" {
		t.Fatalf("FindClosest(run 2) = %+v, want stop 58849", across)
	}
	if across.Distance < 15 || across.Distance > 30 {
		t.Errorf("FindClosest(run 2) distance = %.1f, want about 22m", across.Distance)
	}
}

func TestFindClosestUnknownColumn(t *testing.T) {
	db := londontest.OpenStore(t)
	_, err := db.BusStops().FindClosest(context.Background(), position("Bank"),
		storage.Where(storage.BusColumn("colour"), "red"))
	if !errors.Is(err, storage.ErrUnknownColumn) {
		t.Errorf("FindClosest(bad column) error = %v, want ErrUnknownColumn", err)
	}
}

func TestFindFuzzyMatch(t *testing.T) {
	db := londontest.OpenStore(t)
	ctx := context.Background()
	run1 := storage.Where(storage.BusRoute, "15").And(storage.BusRun, 1)

	busTests := []struct {
		query    string
		wantCode string
	}{
		{"Aldgate", "33012"},
		{"Bank", "76541"},
		{"Trafalgar Square / Charing Cross Station", "58848"},
		{"St Paul's Cathedral", "52437"},
		{"Wimbledon Common", ""},
	}
	for _, tt := range busTests {
		got, err := db.BusStops().FindFuzzyMatch(ctx, run1, tt.query, match.DefaultMinConfidence)
		if err != nil {
			t.Fatalf("FindFuzzyMatch(%q) error: %v", tt.query, err)
		}
		code := ""
		if got != nil {
			code = got.Code
		}
		if code != tt.wantCode {
			t.Errorf("FindFuzzyMatch(%q) = %q, want %q", tt.query, code, tt.wantCode)
		}
	}

	got, err := db.Stations().FindFuzzyMatch(ctx, storage.Where(storage.StationLine, "V"), "Oxford Circus", match.DefaultMinConfidence)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Code != "OXC" || got.Line != "V" {
		t.Errorf("FindFuzzyMatch(Oxford Circus, V) = %+v", got)
	}
}

func TestFindExactMatch(t *testing.T) {
	db := londontest.OpenStore(t)
	ctx := context.Background()
	stops := db.BusStops()

	first, err := stops.FindExactMatch(ctx, storage.Where(storage.BusCode, "76541"))
	if err != nil {
		t.Fatal(err)
	}
	if first == nil || first.Route != "15" {
		t.Errorf("FindExactMatch(76541) = %+v, want the route 15 row first", first)
	}

	on25, err := stops.FindExactMatch(ctx, storage.Where(storage.BusCode, "76541").And(storage.BusRoute, "25"))
	if err != nil {
		t.Fatal(err)
	}
	if on25 == nil || on25.Run != 1 || on25.Sequence != 2 {
		t.Errorf("FindExactMatch(76541, 25) = %+v, want run 1 sequence 2", on25)
	}

	none, err := stops.FindExactMatch(ctx, storage.Where(storage.BusCode, "76541").And(storage.BusRoute, "73"))
	if err != nil || none != nil {
		t.Errorf("FindExactMatch(no rows) = %v, %v; want nil, nil", none, err)
	}
}

func TestMaxValue(t *testing.T) {
	db := londontest.OpenStore(t)
	ctx := context.Background()
	tests := []struct {
		route string
		want  int
	}{
		{"15", 2},
		{"25", 1},
		{"73", 0},
	}
	for _, tt := range tests {
		got, err := db.BusStops().MaxValue(ctx, storage.BusRun, storage.Where(storage.BusRoute, tt.route))
		if err != nil {
			t.Fatalf("MaxValue(run, %s) error: %v", tt.route, err)
		}
		if got != tt.want {
			t.Errorf("MaxValue(run, %s) = %d, want %d", tt.route, got, tt.want)
		}
	}
}

func TestCheckExistence(t *testing.T) {
	db := londontest.OpenStore(t)
	ctx := context.Background()
	tests := []struct {
		col   storage.BusColumn
		value string
		want  bool
	}{
		{storage.BusRoute, "15", true},
		{storage.BusRoute, "73", false},
		{storage.BusCode, "58848", true},
		{storage.BusCode, "99999", false},
	}
	for _, tt := range tests {
		got, err := db.BusStops().CheckExistence(ctx, tt.col, tt.value)
		if err != nil {
			t.Fatalf("CheckExistence(%s, %s) error: %v", tt.col, tt.value, err)
		}
		if got != tt.want {
			t.Errorf("CheckExistence(%s, %s) = %v, want %v", tt.col, tt.value, got, tt.want)
		}
	}
	if _, err := db.BusStops().CheckExistence(ctx, storage.BusColumn("colour"), "red"); !errors.Is(err, storage.ErrUnknownColumn) {
		t.Errorf("CheckExistence(bad column) error = %v, want ErrUnknownColumn", err)
	}
}

func TestLinesServing(t *testing.T) {
	db := londontest.OpenStore(t)
	ctx := context.Background()
	tests := []struct {
		code string
		want []string
	}{
		{"STK", []string{"N", "V"}},
		{"BNK", []string{"C", "N"}},
		{"HAI", []string{"C"}},
		{"ZZZ", nil},
	}
	for _, tt := range tests {
		got, err := db.LinesServing(ctx, tt.code)
		if err != nil {
			t.Fatalf("LinesServing(%s) error: %v", tt.code, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("LinesServing(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestMetadata(t *testing.T) {
	db := londontest.OpenStore(t)
	ctx := context.Background()

	got, err := db.GetMetadata(ctx, "built_at")
	if err != nil || got != "" {
		t.Fatalf("GetMetadata(unset) = %q, %v; want empty", got, err)
	}
	if err := db.SetMetadata(ctx, "built_at", "2026-10-01"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata(ctx, "built_at", "2026-10-14"); err != nil {
		t.Fatal(err)
	}
	if got, _ := db.GetMetadata(ctx, "built_at"); got != "2026-10-14" {
		t.Errorf("GetMetadata(built_at) = %q, want 2026-10-14", got)
	}
}
