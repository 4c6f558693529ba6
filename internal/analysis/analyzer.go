package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
	"github.com/ironsheep/kolam-tools-mcp/internal/layout"
)

// Graph algorithms, replaceable in tests.
var (
	cycleBasis = topo.UndirectedCyclesIn
	components = topo.ConnectedComponents
)

// Analyze computes the analysis record of p.
//
// A pattern with no dots or no graph nodes returns its current record
// unchanged. With fewer than two nodes the cycle, connectivity and Eulerian
// metrics keep their defaults. If the graph computation fails, the returned
// error wraps kolam.ErrAnalysisFailure and the remaining fields are still
// filled in.
func Analyze(p *kolam.Pattern) (kolam.AnalysisResult, error) {
	if p == nil {
		return kolam.DefaultAnalysis(), nil
	}
	if len(p.Dots) == 0 || p.Graph.Order() == 0 {
		return p.Analysis, nil
	}

	res := kolam.DefaultAnalysis()
	var err error
	if p.Graph.Order() >= 2 {
		var m graphMetrics
		m, err = computeGraphMetrics(p.Graph)
		if err == nil {
			res.LoopCount = m.loops
			res.Connectivity = kolam.Disconnected
			if m.components == 1 {
				res.Connectivity = kolam.Connected
			}
		}
		res.HasEulerianPath = oddDegreeNodes(p.Graph) <= 2
	}

	res.DotCount = len(p.Dots)
	res.LineCount = len(p.Lines)
	res.SymmetryScore = SymmetryScore(p.Graph)
	res.RotationalFold = RotationalFold(p.Dots)
	res.GridPattern = layout.GridPattern(p.Dots)
	res.Region = Classify(res)
	return res, err
}

type graphMetrics struct {
	loops      int
	components int
}

// computeGraphMetrics runs the cycle basis and component search on a gonum
// copy of g. A panic inside the graph library is returned as an error.
func computeGraphMetrics(g *kolam.Graph) (m graphMetrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", kolam.ErrAnalysisFailure, r)
		}
	}()

	ug := simple.NewUndirectedGraph()
	for n := 0; n < g.Order(); n++ {
		ug.AddNode(simple.Node(n))
	}
	for _, k := range g.Edges() {
		ug.SetEdge(ug.NewEdge(simple.Node(k.U), simple.Node(k.V)))
	}

	m.loops = len(cycleBasis(ug))
	m.components = len(components(ug))
	return m, nil
}

func oddDegreeNodes(g *kolam.Graph) int {
	odd := 0
	for n := 0; n < g.Order(); n++ {
		if g.Degree(n)%2 != 0 {
			odd++
		}
	}
	return odd
}
