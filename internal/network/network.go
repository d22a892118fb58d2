package network

import (
	"errors"
	"fmt"
	"strings"
)

// AllLines keys the aggregate graph covering every line.
const AllLines = "All"

var (
	// ErrUnknownNode is returned when a route endpoint is not a station of the graph.
	ErrUnknownNode = errors.New("unknown network node")
	// ErrUnknownLine is returned when no graph exists for a line code.
	ErrUnknownLine = errors.New("unknown network line")
	// ErrNoPath is returned when the graph has no path between two stations.
	ErrNoPath = errors.New("no path")
)

// EntranceNode names the node passengers start a journey from.
func EntranceNode(station string) string { return station + ":entrance" }

// ExitNode names the node passengers finish a journey at.
func ExitNode(station string) string { return station + ":exit" }

// PlatformNode names a station's platform for one direction of one line.
func PlatformNode(station, direction, line string) string {
	return station + ":" + direction + ":" + line
}

// Hop is one platform visited along a route.
type Hop struct {
	Station   string `json:"station"`
	Direction string `json:"direction"`
	Line      string `json:"line"`
}

func parseHop(node string) (Hop, bool) {
	parts := strings.Split(node, ":")
	if len(parts) != 3 {
		return Hop{}, false
	}
	return Hop{Station: parts[0], Direction: parts[1], Line: parts[2]}, true
}

// Network holds one graph per line code plus the AllLines aggregate. A nil Network
// means no topology is available and routes cannot be validated.
type Network struct {
	graphs map[string]*Graph
}

// New wraps per-line graphs keyed by line code.
func New(graphs map[string]*Graph) *Network {
	return &Network{graphs: graphs}
}

// Available reports whether route questions can be answered.
func (n *Network) Available() bool {
	return n != nil && len(n.graphs) > 0
}

// Lines returns the keys of every graph held.
func (n *Network) Lines() []string {
	if n == nil {
		return nil
	}
	lines := make([]string, 0, len(n.graphs))
	for k := range n.graphs {
		lines = append(lines, k)
	}
	return lines
}

// Graph returns the graph for a line code; an empty code means AllLines.
func (n *Network) Graph(line string) (*Graph, error) {
	if line == "" {
		line = AllLines
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLine, line)
	}
	g, ok := n.graphs[line]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLine, line)
	}
	return g, nil
}

type leg struct {
	hops    []Hop
	minutes float64
}

func (n *Network) leg(origin, destination, line string) (leg, error) {
	g, err := n.Graph(line)
	if err != nil {
		return leg{}, err
	}
	src, ok := g.index[EntranceNode(origin)]
	if !ok {
		return leg{}, fmt.Errorf("%w: %s", ErrUnknownNode, origin)
	}
	dst, ok := g.index[ExitNode(destination)]
	if !ok {
		return leg{}, fmt.Errorf("%w: %s", ErrUnknownNode, destination)
	}
	path, total, ok := g.shortestPath(src, dst)
	if !ok {
		return leg{}, fmt.Errorf("%w: %s to %s", ErrNoPath, origin, destination)
	}
	var hops []Hop
	for _, node := range path {
		if h, ok := parseHop(g.names[node]); ok {
			hops = append(hops, h)
		}
	}
	return leg{hops: hops, minutes: total}, nil
}

func (n *Network) route(origin, destination, via, line string) (leg, error) {
	if via == "" {
		return n.leg(origin, destination, line)
	}
	first, err := n.leg(origin, via, line)
	if err != nil {
		return leg{}, err
	}
	second, err := n.leg(via, destination, line)
	if err != nil {
		return leg{}, err
	}
	rest := second.hops
	if len(first.hops) > 0 && len(rest) > 0 && first.hops[len(first.hops)-1] == rest[0] {
		rest = rest[1:]
	}
	return leg{
		hops:    append(first.hops, rest...),
		minutes: first.minutes + second.minutes,
	}, nil
}

// DescribeRoute lists the platforms visited on the quickest journey from origin to
// destination, optionally through via and optionally on one line only.
func (n *Network) DescribeRoute(origin, destination, via, line string) ([]Hop, error) {
	r, err := n.route(origin, destination, via, line)
	if err != nil {
		return nil, err
	}
	return r.hops, nil
}

// LengthOfRoute is the journey time in minutes of the route DescribeRoute gives.
func (n *Network) LengthOfRoute(origin, destination, via, line string) (float64, error) {
	r, err := n.route(origin, destination, via, line)
	if err != nil {
		return 0, err
	}
	return r.minutes, nil
}

// DirectRouteExists reports whether one train can take a passenger from origin to
// destination. A route visiting a station twice in a row (a change of platform) or
// twice with one station between (going there and back) is not direct. When
// mustStopAt is given the route must also call there.
func (n *Network) DirectRouteExists(origin, destination, via, line, mustStopAt string) (bool, error) {
	hops, err := n.DescribeRoute(origin, destination, via, line)
	if errors.Is(err, ErrNoPath) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	calls := false
	for i, h := range hops {
		if i+1 < len(hops) && hops[i+1].Station == h.Station {
			return false, nil
		}
		if i+2 < len(hops) && hops[i+2].Station == h.Station {
			return false, nil
		}
		if h.Station == mustStopAt {
			calls = true
		}
	}
	if mustStopAt != "" && !calls {
		return false, nil
	}
	return true, nil
}
