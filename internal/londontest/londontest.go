// Package londontest builds a small slice of the London network for tests: part of
// the Central, Northern, Victoria and Metropolitan lines, the DLR and two bus routes.
package londontest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"transitbot/internal/geo"
	"transitbot/internal/network"
	"transitbot/internal/storage"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type place struct {
	name, code string
	lat, lon   float64
}

var places = map[string]place{}

func p(name, code string, lat, lon float64) string {
	places[name] = place{name: name, code: code, lat: lat, lon: lon}
	return name
}

var (
	westRuislip     = p("West Ruislip", "WRP", 51.5696, -0.4376)
	ruislipGardens  = p("Ruislip Gardens", "RUG", 51.5606, -0.4103)
	whiteCity       = p("White City", "WCT", 51.5120, -0.2239)
	nottingHillGate = p("Notting Hill Gate", "NHG", 51.5094, -0.1967)
	oxfordCircus    = p("Oxford Circus", "OXC", 51.5152, -0.1415)
	bank            = p("Bank", "BNK", 51.5133, -0.0886)
	liverpoolStreet = p("Liverpool Street", "LST", 51.5178, -0.0823)
	stratford       = p("Stratford", "SFD", 51.5416, -0.0042)
	leytonstone     = p("Leytonstone", "LYS", 51.5683, 0.0083)
	snaresbrook     = p("Snaresbrook", "SNB", 51.5808, 0.0216)
	southWoodford   = p("South Woodford", "SWF", 51.5917, 0.0275)
	woodford        = p("Woodford", "WFD", 51.6070, 0.0341)
	rodingValley    = p("Roding Valley", "ROD", 51.6171, 0.0439)
	chigwell        = p("Chigwell", "CHG", 51.6177, 0.0755)
	grangeHill      = p("Grange Hill", "GRH", 51.6130, 0.0923)
	hainault        = p("Hainault", "HAI", 51.6030, 0.0933)
	fairlop         = p("Fairlop", "FLP", 51.5960, 0.0912)
	barkingside     = p("Barkingside", "BSD", 51.5856, 0.0887)
	newburyPark     = p("Newbury Park", "NEP", 51.5756, 0.0899)
	gantsHill       = p("Gants Hill", "GTH", 51.5765, 0.0663)
	redbridge       = p("Redbridge", "RED", 51.5762, 0.0454)
	wanstead        = p("Wanstead", "WAN", 51.5775, 0.0286)

	morden      = p("Morden", "MOR", 51.4022, -0.1948)
	stockwell   = p("Stockwell", "STK", 51.4723, -0.1229)
	kennington  = p("Kennington", "KEN", 51.4884, -0.1053)
	waterloo    = p("Waterloo", "WLO", 51.5036, -0.1143)
	charingX    = p("Charing Cross", "CHX", 51.5080, -0.1247)
	euston      = p("Euston", "EUS", 51.5282, -0.1337)
	kingsCross  = p("King's Cross St. Pancras", "KXX", 51.5308, -0.1238)
	camdenTown  = p("Camden Town", "CTN", 51.5392, -0.1426)
	highBarnet  = p("High Barnet", "HBT", 51.6503, -0.1943)
	victoria    = p("Victoria", "VIC", 51.4965, -0.1447)
	greenPark   = p("Green Park", "GPK", 51.5067, -0.1428)
	prestonRoad = p("Preston Road", storage.NoLiveDataCode, 51.5720, -0.2950)

	limehouse   = p("Limehouse", "LIM", 51.5124, -0.0397)
	westferry   = p("Westferry", "WFE", 51.5097, -0.0265)
	poplar      = p("Poplar", "POP", 51.5077, -0.0173)
	blackwall   = p("Blackwall", "BLA", 51.5079, -0.0066)
	canningTown = p("Canning Town", "CGT", 51.5147, 0.0082)
	beckton     = p("Beckton", "BEC", 51.5144, 0.0614)
)

var (
	centralWest = []string{westRuislip, ruislipGardens, whiteCity, nottingHillGate, oxfordCircus, bank, liverpoolStreet, stratford}
	centralLoop = []string{snaresbrook, southWoodford, woodford, rodingValley, chigwell, grangeHill, hainault, fairlop, barkingside, newburyPark, gantsHill, redbridge, wanstead}
	northernCX  = []string{morden, stockwell, kennington, waterloo, charingX, euston, camdenTown, highBarnet}
	northernBNK = []string{kennington, bank, kingsCross, euston}
	victoriaLn  = []string{stockwell, victoria, greenPark, oxfordCircus, euston, kingsCross}
	metLn       = []string{prestonRoad}
	dlrLn       = []string{limehouse, westferry, poplar, blackwall, canningTown, beckton}
)

func grid(name string) (int, int) {
	pl := places[name]
	return geo.WGS84ToEastingNorthing(pl.lat, pl.lon)
}

// Position returns a fixture place's WGS84 latitude and longitude.
func Position(name string) (lat, lon float64) {
	pl := places[name]
	return pl.lat, pl.lon
}

// Stations returns one row per (station, line) in line order.
func Stations() []storage.Station {
	var rows []storage.Station
	add := func(line string, names ...[]string) {
		seen := map[string]bool{}
		for _, list := range names {
			for _, n := range list {
				if seen[n] {
					continue
				}
				seen[n] = true
				e, no := grid(n)
				rows = append(rows, storage.Station{
					Name: n, Code: places[n].code, Line: line, Easting: e, Northing: no,
				})
			}
		}
	}
	add("C", centralWest, []string{leytonstone}, centralLoop)
	add("N", northernCX, northernBNK)
	add("V", victoriaLn)
	add("M", metLn)
	add("DLR", dlrLn)
	return rows
}

func travel(b *network.Builder, from, fromDir, to, toDir, line string) {
	e1, n1 := grid(from)
	e2, n2 := grid(to)
	b.AddTravel(from, fromDir, to, toDir, line, network.TravelMinutes(geo.GridDistance(e1, n1, e2, n2)))
}

func chain(b *network.Builder, line string, names []string) {
	for i := 0; i+1 < len(names); i++ {
		travel(b, names[i], "", names[i+1], "", line)
		travel(b, names[i+1], "", names[i], "", line)
	}
}

func central(b *network.Builder) {
	chain(b, "Central", centralWest)
	// Leytonstone is where the Woodford and Hainault branches split.
	travel(b, stratford, "", leytonstone, "Eastbound", "Central")
	travel(b, leytonstone, "Westbound", stratford, "", "Central")
	for _, branch := range []string{snaresbrook, wanstead} {
		travel(b, leytonstone, "Eastbound", branch, "", "Central")
		travel(b, branch, "", leytonstone, "Westbound", "Central")
	}
	chain(b, "Central", centralLoop)
}

func northern(b *network.Builder) {
	chain(b, "Northern", northernCX)
	chain(b, "Northern", northernBNK)
}

func victoriaLine(b *network.Builder) {
	chain(b, "Victoria", victoriaLn)
}

// Network returns per-line graphs for C, N and V plus the aggregate. The DLR and
// Metropolitan stations have no graph.
func Network() *network.Network {
	build := func(parts ...func(*network.Builder)) *network.Graph {
		b := network.NewBuilder()
		for _, part := range parts {
			part(b)
		}
		return b.Build()
	}
	return network.New(map[string]*network.Graph{
		"C":              build(central),
		"N":              build(northern),
		"V":              build(victoriaLine),
		network.AllLines: build(central, northern, victoriaLine),
	})
}

type busPlace struct {
	name     string
	lat, lon float64
}

var (
	trafalgar = busPlace{"TRAFALGAR SQUARE / CHARING CROSS STATION <> # >T<", 51.5074, -0.1278}
	aldwych   = busPlace{"STRAND / ALDWYCH", 51.5122, -0.1170}
	stPauls   = busPlace{"ST PAUL'S CATHEDRAL", 51.5138, -0.0984}
	bankStop  = busPlace{"BANK STATION <> #", 51.5133, -0.0890}
	aldgate   = busPlace{"ALDGATE BUS STATION", 51.5137, -0.0740}
	holborn   = busPlace{"HOLBORN STATION <>", 51.5174, -0.1200}
)

// westboundOffset puts the other direction's stop across the road.
const westboundOffset = 0.0002

// BusStops returns route 15 (two runs) and route 25 (one run).
func BusStops() []storage.BusStop {
	var rows []storage.BusStop
	add := func(route string, run int, bp busPlace, code string, heading int, offset float64) {
		e, n := geo.WGS84ToEastingNorthing(bp.lat+offset, bp.lon)
		seq := 1
		for _, r := range rows {
			if r.Route == route && r.Run == run {
				seq++
			}
		}
		rows = append(rows, storage.BusStop{
			Name: bp.name, Code: code, Route: route, Run: run, Sequence: seq,
			Heading: heading, Easting: e, Northing: n,
		})
	}
	add("15", 1, trafalgar, "58848", 90, 0)
	add("15", 1, aldwych, "47571", 70, 0)
	add("15", 1, stPauls, "52437", 90, 0)
	add("15", 1, bankStop, "76541", 90, 0)
	add("15", 1, aldgate, "33012", 90, 0)

	add("15", 2, aldgate, "33013", 270, westboundOffset)
	add("15", 2, bankStop, "76542", 270, westboundOffset)
	add("15", 2, stPauls, "52438", 270, westboundOffset)
	add("15", 2, aldwych, "47572", 250, westboundOffset)
	add("15", 2, trafalgar, "58849", 270, westboundOffset)

	add("25", 1, holborn, "12345", 100, 0)
	add("25", 1, bankStop, "76541", 90, 0)
	add("25", 1, aldgate, "33012", 90, 0)
	return rows
}

// OpenStore creates a location database in a temporary directory holding the
// fixture stations and bus stops.
func OpenStore(t testing.TB) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "locations.db"), Logger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := db.InsertStations(ctx, Stations()); err != nil {
		t.Fatalf("insert stations: %v", err)
	}
	if err := db.InsertBusStops(ctx, BusStops()); err != nil {
		t.Fatalf("insert bus stops: %v", err)
	}
	return db
}
