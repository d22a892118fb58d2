// Package network models the rail network as weighted directed graphs, one per line
// plus an aggregate, and answers route questions over them.
package network

import (
	"container/heap"
	"math"
)

// Edge is a directed, weighted connection between two named nodes. Weights are minutes.
type Edge struct {
	From   string
	To     string
	Weight float64
}

type arc struct {
	to     int
	weight float64
}

// Graph is an immutable adjacency structure. Node names are interned to indexes at
// construction so path searches work on plain slices.
type Graph struct {
	names []string
	index map[string]int
	adj   [][]arc
}

// NewGraph builds a graph from edges, keeping edge order for deterministic searches.
func NewGraph(edges []Edge) *Graph {
	g := &Graph{index: make(map[string]int)}
	for _, e := range edges {
		from := g.intern(e.From)
		to := g.intern(e.To)
		g.adj[from] = append(g.adj[from], arc{to: to, weight: e.Weight})
	}
	return g
}

func (g *Graph) intern(name string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	i := len(g.names)
	g.names = append(g.names, name)
	g.index[name] = i
	g.adj = append(g.adj, nil)
	return i
}

// HasNode reports whether name is a node of the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.names)
}

// Edges lists every edge in insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for from, arcs := range g.adj {
		for _, a := range arcs {
			edges = append(edges, Edge{From: g.names[from], To: g.names[a.to], Weight: a.weight})
		}
	}
	return edges
}

// shortestPath runs Dijkstra from src and returns the node sequence to dst and its
// total weight. ok is false when dst is unreachable.
func (g *Graph) shortestPath(src, dst int) (path []int, total float64, ok bool) {
	dist := make([]float64, len(g.names))
	prev := make([]int, len(g.names))
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[src] = 0

	pq := &queue{{node: src, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if cur.dist > dist[cur.node] {
			continue
		}
		if cur.node == dst {
			break
		}
		for _, a := range g.adj[cur.node] {
			if d := cur.dist + a.weight; d < dist[a.to] {
				dist[a.to] = d
				prev[a.to] = cur.node
				heap.Push(pq, item{node: a.to, dist: d})
			}
		}
	}

	if math.IsInf(dist[dst], 1) {
		return nil, 0, false
	}
	for n := dst; n != -1; n = prev[n] {
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[dst], true
}

type item struct {
	node int
	dist float64
}

// queue is a min-heap on distance, then node index.
type queue []item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)   { *q = append(*q, x.(item)) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
