package network

import "slices"

// Weights between node kinds, in minutes.
const (
	EntranceToPlatform = 2
	PlatformChange     = 6
	WalkBetween        = 10
	stopPenalty        = 0.5
	metersPerMinute    = 600
)

// TravelMinutes estimates the time between adjacent stations this far apart: trains
// at 36km/h plus half a minute standing at the platform.
func TravelMinutes(meters float64) float64 {
	return stopPenalty + meters/metersPerMinute
}

// Builder assembles one line's graph (or the aggregate) station by station. Each
// station gets an entrance node, an exit node and one platform node per
// (direction, line) it is served by. Leave direction empty where one platform node
// serves both directions; give it a value where a line splits or loops.
type Builder struct {
	edges     []Edge
	stations  []string
	platforms map[string][]string
	walks     [][2]string
	overrides map[string]float64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{platforms: make(map[string][]string), overrides: make(map[string]float64)}
}

// InterchangeOverride replaces the cost of changing to or from one platform within
// its station. A zero Minutes removes those changes altogether.
type InterchangeOverride struct {
	Station, Direction, Line string
	Minutes                  float64
}

// ExpensiveInterchanges are the London changes that take far longer than the
// platforms suggest. Edgware Road's Bakerloo platform is a separate station.
var ExpensiveInterchanges = []InterchangeOverride{
	{Station: "Edgware Road", Line: "Bakerloo"},
	{Station: "Paddington", Direction: "Hammersmith Branch", Line: "Hammersmith & City", Minutes: 10},
	{Station: "Paddington", Direction: "Hammersmith Branch", Line: "Circle", Minutes: 10},
}

// AddInterchangeOverride changes the cost of interchanges at one platform. It has
// no effect if the platform never gets a train.
func (b *Builder) AddInterchangeOverride(o InterchangeOverride) {
	b.overrides[PlatformNode(o.Station, o.Direction, o.Line)] = o.Minutes
}

// changeWeight is the cost of changing between two platforms of a station, and
// false if the change is not allowed. A later platform's override wins.
func (b *Builder) changeWeight(from, to string) (float64, bool) {
	w := float64(PlatformChange)
	for _, node := range []string{from, to} {
		if m, ok := b.overrides[node]; ok {
			w = m
		}
	}
	return w, w > 0
}

// AddTravel adds a one-way train movement between two platforms.
func (b *Builder) AddTravel(from, fromDirection, to, toDirection, line string, minutes float64) {
	dep := b.platform(from, fromDirection, line)
	arr := b.platform(to, toDirection, line)
	b.edges = append(b.edges, Edge{From: dep, To: arr, Weight: minutes})
}

// AddBothWays adds train movements in each direction between two platforms.
func (b *Builder) AddBothWays(from, fromDirection, to, toDirection, line string, minutes float64) {
	b.AddTravel(from, fromDirection, to, toDirection, line, minutes)
	b.AddTravel(to, toDirection, from, fromDirection, line, minutes)
}

// AddWalk lets passengers leave one station and enter another on foot.
func (b *Builder) AddWalk(from, to string) {
	b.walks = append(b.walks, [2]string{from, to})
}

func (b *Builder) platform(station, direction, line string) string {
	node := PlatformNode(station, direction, line)
	if _, ok := b.platforms[station]; !ok {
		b.stations = append(b.stations, station)
	}
	if !slices.Contains(b.platforms[station], node) {
		b.platforms[station] = append(b.platforms[station], node)
	}
	return node
}

// Build adds the entrance, exit and interchange edges and returns the graph.
// Exits only lead out and entrances only lead in, so changing trains has to use
// the interchange edge between platforms.
func (b *Builder) Build() *Graph {
	edges := slices.Clone(b.edges)
	for _, station := range b.stations {
		entrance, exit := EntranceNode(station), ExitNode(station)
		edges = append(edges, Edge{From: entrance, To: exit, Weight: 0})
		platforms := b.platforms[station]
		for _, p := range platforms {
			edges = append(edges,
				Edge{From: entrance, To: p, Weight: EntranceToPlatform},
				Edge{From: p, To: exit, Weight: 0},
			)
			for _, other := range platforms {
				if other == p {
					continue
				}
				if w, ok := b.changeWeight(p, other); ok {
					edges = append(edges, Edge{From: p, To: other, Weight: w})
				}
			}
		}
	}
	for _, w := range b.walks {
		if _, ok := b.platforms[w[0]]; !ok {
			continue
		}
		if _, ok := b.platforms[w[1]]; !ok {
			continue
		}
		edges = append(edges, Edge{From: ExitNode(w[0]), To: EntranceNode(w[1]), Weight: WalkBetween})
	}
	return NewGraph(edges)
}
