package kolam

import "math"

// Point is an integer pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Dot is a detected anchor point (pulli). Radius is advisory: it affects
// validation and rendering but never graph topology.
type Dot struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Radius int `json:"radius"`
}

// Pos returns the dot centre.
func (d Dot) Pos() Point {
	return Point{X: d.X, Y: d.Y}
}

// Line is a straight connector between two dot centres. It mirrors one graph
// edge and exists so rendering consumers need not walk the graph.
type Line struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// Matches reports whether l joins a and b, in either order.
func (l Line) Matches(a, b Point) bool {
	return (l.P1 == a && l.P2 == b) || (l.P1 == b && l.P2 == a)
}

// Connectivity labels.
const (
	Connected    = "Connected"
	Disconnected = "Disconnected"
	NotAvailable = "N/A"
)

// AnalysisResult is the flat record of graph and geometric statistics for a
// pattern. It is recomputed from scratch on each analysis.
type AnalysisResult struct {
	DotCount        int     `json:"dot_count"`
	LineCount       int     `json:"line_count"`
	LoopCount       int     `json:"loop_count"`
	Connectivity    string  `json:"connectivity"`
	HasEulerianPath bool    `json:"has_eulerian_path"`
	SymmetryScore   float64 `json:"symmetry_score"`
	RotationalFold  int     `json:"rotational_fold"`
	GridPattern     string  `json:"grid_pattern"`
	Region          string  `json:"region"`
}

// DefaultAnalysis returns the record an unanalysed pattern carries.
func DefaultAnalysis() AnalysisResult {
	return AnalysisResult{
		Connectivity:   NotAvailable,
		RotationalFold: 1,
		GridPattern:    NotAvailable,
		Region:         NotAvailable,
	}
}

// Pattern is the unit of exchange between pipeline stages.
type Pattern struct {
	Dots     []Dot
	Lines    []Line
	Graph    *Graph
	Analysis AnalysisResult

	// Warnings collects degraded-path notes (detection or analysis problems)
	// that did not stop the pipeline.
	Warnings []string
}

// NewPattern creates a pattern whose graph holds one node per dot and no edges.
func NewPattern(dots []Dot) *Pattern {
	return &Pattern{
		Dots:     dots,
		Lines:    make([]Line, 0),
		Graph:    NewGraph(dots),
		Analysis: DefaultAnalysis(),
	}
}

// Connect adds the edge u-v with its line record. It returns false when the
// edge is invalid or already present, in which case nothing changes.
func (p *Pattern) Connect(u, v int, attr EdgeAttr) bool {
	if !p.Graph.AddEdge(u, v, attr) {
		return false
	}
	p.Lines = append(p.Lines, Line{P1: p.Graph.Pos(u), P2: p.Graph.Pos(v)})
	return true
}

// Disconnect removes the edge u-v and the first line joining the two node
// positions. It returns false if the edge did not exist.
func (p *Pattern) Disconnect(u, v int) bool {
	if !p.Graph.RemoveEdge(u, v) {
		return false
	}
	a, b := p.Graph.Pos(u), p.Graph.Pos(v)
	for i, l := range p.Lines {
		if l.Matches(a, b) {
			p.Lines = append(p.Lines[:i], p.Lines[i+1:]...)
			break
		}
	}
	return true
}

// Warn records a degraded-path note.
func (p *Pattern) Warn(msg string) {
	p.Warnings = append(p.Warnings, msg)
}
