package pipeline

import (
	"math"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// Report is the analysis record in the field layout downstream description
// and rendering services consume.
type Report struct {
	DotCount       int     `json:"dot_count"`
	LineCount      int     `json:"line_count"`
	SymmetryScore  float64 `json:"symmetry_score"`
	RotationalFold int     `json:"rotational_symmetry_fold"`
	ClosedLoops    int     `json:"closed_loops"`
	Connectivity   string  `json:"connectivity"`
	IsEulerian     bool    `json:"is_eulerian"`
	GridPattern    string  `json:"grid_pattern"`
	Region         string  `json:"region"`
}

// DotRecord is the wire form of a dot.
type DotRecord struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Radius int `json:"radius"`
}

// LineRecord is the wire form of a line.
type LineRecord struct {
	Start [2]int `json:"start"`
	End   [2]int `json:"end"`
}

// NewReport converts an analysis record to its wire form. The symmetry score
// is rounded to two decimals.
func NewReport(a kolam.AnalysisResult) Report {
	return Report{
		DotCount:       a.DotCount,
		LineCount:      a.LineCount,
		SymmetryScore:  math.Round(a.SymmetryScore*100) / 100,
		RotationalFold: a.RotationalFold,
		ClosedLoops:    a.LoopCount,
		Connectivity:   a.Connectivity,
		IsEulerian:     a.HasEulerianPath,
		GridPattern:    a.GridPattern,
		Region:         a.Region,
	}
}

// DotRecords converts dots to their wire form. The result is never nil.
func DotRecords(dots []kolam.Dot) []DotRecord {
	out := make([]DotRecord, len(dots))
	for i, d := range dots {
		out[i] = DotRecord{X: d.X, Y: d.Y, Radius: d.Radius}
	}
	return out
}

// LineRecords converts lines to their wire form. The result is never nil.
func LineRecords(lines []kolam.Line) []LineRecord {
	out := make([]LineRecord, len(lines))
	for i, l := range lines {
		out[i] = LineRecord{Start: [2]int{l.P1.X, l.P1.Y}, End: [2]int{l.P2.X, l.P2.Y}}
	}
	return out
}
