package kolam

import "sort"

// EdgeKind labels the strategy that proposed an edge.
type EdgeKind string

const (
	// EdgeTraced edges come from line-pixel votes and carry no label.
	EdgeTraced    EdgeKind = ""
	EdgeProximity EdgeKind = "proximity"
	EdgePattern   EdgeKind = "pattern"
)

// EdgeAttr is the per-edge metadata kept in the graph side table.
type EdgeAttr struct {
	Kind   EdgeKind `json:"type,omitempty"`
	Weight float64  `json:"weight,omitempty"`
}

// EdgeKey identifies an undirected edge. U is always the smaller index.
type EdgeKey struct {
	U int `json:"u"`
	V int `json:"v"`
}

// Key returns the canonical key for the unordered pair u, v.
func Key(u, v int) EdgeKey {
	if u > v {
		u, v = v, u
	}
	return EdgeKey{U: u, V: v}
}

// Graph is an undirected simple graph over dot indices.
//
// Invariants: the node count equals the dot count it was built from, every
// edge joins two valid nodes, there are no self-loops, and there is at most
// one edge per unordered pair.
type Graph struct {
	pos   []Point
	adj   []map[int]struct{}
	attrs map[EdgeKey]EdgeAttr
}

// NewGraph creates a graph with one node per dot, positioned at the dot centre.
func NewGraph(dots []Dot) *Graph {
	g := &Graph{
		pos:   make([]Point, len(dots)),
		adj:   make([]map[int]struct{}, len(dots)),
		attrs: make(map[EdgeKey]EdgeAttr),
	}
	for i, d := range dots {
		g.pos[i] = d.Pos()
		g.adj[i] = make(map[int]struct{})
	}
	return g
}

// Order returns the number of nodes.
func (g *Graph) Order() int {
	if g == nil {
		return 0
	}
	return len(g.pos)
}

// Size returns the number of edges.
func (g *Graph) Size() int {
	if g == nil {
		return 0
	}
	return len(g.attrs)
}

// Pos returns the position attribute of node n.
func (g *Graph) Pos(n int) Point {
	return g.pos[n]
}

func (g *Graph) valid(n int) bool {
	return n >= 0 && n < len(g.pos)
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v int) bool {
	if g == nil || !g.valid(u) || !g.valid(v) {
		return false
	}
	_, ok := g.adj[u][v]
	return ok
}

// AddEdge inserts the edge u-v. Self-loops, out-of-range nodes and existing
// edges are rejected without modifying the graph.
func (g *Graph) AddEdge(u, v int, attr EdgeAttr) bool {
	if u == v || !g.valid(u) || !g.valid(v) || g.HasEdge(u, v) {
		return false
	}
	g.adj[u][v] = struct{}{}
	g.adj[v][u] = struct{}{}
	g.attrs[Key(u, v)] = attr
	return true
}

// RemoveEdge deletes the edge u-v, returning false if it was absent.
func (g *Graph) RemoveEdge(u, v int) bool {
	if !g.HasEdge(u, v) {
		return false
	}
	delete(g.adj[u], v)
	delete(g.adj[v], u)
	delete(g.attrs, Key(u, v))
	return true
}

// Attr returns the metadata of edge u-v.
func (g *Graph) Attr(u, v int) (EdgeAttr, bool) {
	a, ok := g.attrs[Key(u, v)]
	return a, ok
}

// Degree returns the number of neighbours of n.
func (g *Graph) Degree(n int) int {
	return len(g.adj[n])
}

// Neighbors returns the neighbours of n in ascending order.
func (g *Graph) Neighbors(n int) []int {
	out := make([]int, 0, len(g.adj[n]))
	for m := range g.adj[n] {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// Edges returns every edge key in ascending (U, V) order.
func (g *Graph) Edges() []EdgeKey {
	if g == nil {
		return nil
	}
	out := make([]EdgeKey, 0, len(g.attrs))
	for k := range g.attrs {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].U != out[j].U {
			return out[i].U < out[j].U
		}
		return out[i].V < out[j].V
	})
	return out
}

// MeanDegree returns the average node degree, or 0 for an empty graph.
func (g *Graph) MeanDegree() float64 {
	if g.Order() == 0 {
		return 0
	}
	return 2 * float64(g.Size()) / float64(g.Order())
}

// NodeAt returns the node located exactly at p. When several nodes share
// the position, the highest-indexed one wins.
func (g *Graph) NodeAt(p Point) (int, bool) {
	for i := len(g.pos) - 1; i >= 0; i-- {
		if g.pos[i] == p {
			return i, true
		}
	}
	return -1, false
}
