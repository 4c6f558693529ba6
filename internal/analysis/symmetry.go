package analysis

import (
	"math"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// rotationTolerance is the per-axis distance within which a rotated dot
// counts as landing on an existing one.
const rotationTolerance = 5.0

// SymmetryScore returns the fraction of edges whose mirror image across the
// vertical axis x = 0 is also an edge. Mirrored endpoints must land exactly
// on existing nodes. The axis passes through the coordinate origin, not the
// pattern centre, so off-centre patterns score near zero.
func SymmetryScore(g *kolam.Graph) float64 {
	edges := g.Edges()
	if len(edges) == 0 {
		return 0
	}

	matched := 0
	for _, e := range edges {
		u, v := g.Pos(e.U), g.Pos(e.V)
		mu, okU := g.NodeAt(kolam.Point{X: -u.X, Y: u.Y})
		mv, okV := g.NodeAt(kolam.Point{X: -v.X, Y: v.Y})
		if okU && okV && g.HasEdge(mu, mv) {
			matched++
		}
	}
	return float64(matched) / float64(len(edges))
}

// RotationalFold returns 2 when every dot rotated 180 degrees about the dot
// centroid lands within 5px (per axis) of some dot, and 1 otherwise.
func RotationalFold(dots []kolam.Dot) int {
	if len(dots) == 0 {
		return 1
	}

	var cx, cy float64
	for _, d := range dots {
		cx += float64(d.X)
		cy += float64(d.Y)
	}
	cx /= float64(len(dots))
	cy /= float64(len(dots))

	for _, d := range dots {
		rx, ry := 2*cx-float64(d.X), 2*cy-float64(d.Y)
		if !landsOnDot(dots, rx, ry) {
			return 1
		}
	}
	return 2
}

func landsOnDot(dots []kolam.Dot, x, y float64) bool {
	for _, d := range dots {
		if math.Abs(float64(d.X)-x) < rotationTolerance && math.Abs(float64(d.Y)-y) < rotationTolerance {
			return true
		}
	}
	return false
}
