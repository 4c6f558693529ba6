package analysis

import (
	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
	"github.com/ironsheep/kolam-tools-mcp/internal/layout"
)

// LayoutSummary reports every layout classification of a dot set side by
// side: the exact grid string, the tolerant grid fit and the radial check.
type LayoutSummary struct {
	GridPattern string         `json:"grid_pattern"`
	Grid        layout.GridFit `json:"grid"`
	Radial      layout.Radial  `json:"radial"`
}

// DescribeLayout classifies the layout of dots.
func DescribeLayout(dots []kolam.Dot) LayoutSummary {
	return LayoutSummary{
		GridPattern: layout.GridPattern(dots),
		Grid:        layout.FitGrid(dots),
		Radial:      layout.DetectRadial(dots),
	}
}
