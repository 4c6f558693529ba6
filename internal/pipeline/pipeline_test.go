package pipeline

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/kolam-tools-mcp/internal/analysis"
	"github.com/ironsheep/kolam-tools-mcp/internal/config"
	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// squareKolam draws four r6 dots at the corners of a 50px square joined by
// 2px sides, black on white.
func squareKolam() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 120, 120))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	black := color.Gray{Y: 0}

	for _, v := range []int{30, 80} {
		for i := 30; i <= 80; i++ {
			for d := -1; d < 1; d++ {
				img.SetGray(i, v+d, black)
				img.SetGray(v+d, i, black)
			}
		}
	}
	for _, c := range [][2]int{{30, 30}, {80, 30}, {30, 80}, {80, 80}} {
		for y := -6; y <= 6; y++ {
			for x := -6; x <= 6; x++ {
				if x*x+y*y <= 36 {
					img.SetGray(c[0]+x, c[1]+y, black)
				}
			}
		}
	}
	return img
}

func TestRun_SquareKolam(t *testing.T) {
	res := New(nil).Process(squareKolam())
	p := res.Pattern

	require.Len(t, p.Dots, 4)
	assert.Len(t, p.Lines, 4)
	assert.Equal(t, 4, p.Graph.Size())
	assert.Empty(t, p.Warnings)

	a := p.Analysis
	assert.Equal(t, 4, a.DotCount)
	assert.Equal(t, 4, a.LineCount)
	assert.Equal(t, 1, a.LoopCount)
	assert.Equal(t, kolam.Connected, a.Connectivity)
	assert.True(t, a.HasEulerianPath)
	assert.Equal(t, 2, a.RotationalFold)
	assert.NotEqual(t, kolam.NotAvailable, a.Region)

	assert.Equal(t, 4, res.Trace.DotsFound)
	assert.Positive(t, res.Elapsed)
}

func TestRun_AnalysisFailureWarns(t *testing.T) {
	pl := New(nil)
	pl.analyze = func(p *kolam.Pattern) (kolam.AnalysisResult, error) {
		res, err := analysis.Analyze(p)
		require.NoError(t, err)
		res.LoopCount = 0
		res.Connectivity = kolam.NotAvailable
		return res, fmt.Errorf("%w: cycle basis exploded", kolam.ErrAnalysisFailure)
	}

	p := pl.Run(squareKolam())

	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], kolam.ErrAnalysisFailure.Error())
	assert.Contains(t, p.Warnings[0], "cycle basis exploded")
	assert.Equal(t, 4, p.Analysis.DotCount)
	assert.Equal(t, 4, p.Analysis.LineCount)
	assert.Equal(t, kolam.NotAvailable, p.Analysis.Connectivity)
}

func TestRun_InvalidInput(t *testing.T) {
	p := New(config.Default()).Run(nil)

	assert.Empty(t, p.Dots)
	assert.Empty(t, p.Lines)
	assert.Zero(t, p.Graph.Order())
	assert.Equal(t, kolam.DefaultAnalysis(), p.Analysis)
	assert.Equal(t, []string{kolam.ErrInvalidInput.Error()}, p.Warnings)
}

func TestRun_BlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	p := New(nil).Run(img)

	assert.Empty(t, p.Dots)
	assert.Equal(t, kolam.DefaultAnalysis(), p.Analysis)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], kolam.ErrDegenerateDetection.Error())
}

func TestRun_Concurrent(t *testing.T) {
	pl := New(nil)
	img := squareKolam()
	want := pl.Run(img)

	results := make([]*kolam.Pattern, 8)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			results[i] = pl.Run(img)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, got := range results {
		assert.Equal(t, want.Dots, got.Dots)
		assert.Equal(t, want.Lines, got.Lines)
		assert.Equal(t, want.Analysis, got.Analysis)
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport(kolam.AnalysisResult{
		DotCount:        9,
		LineCount:       12,
		LoopCount:       4,
		Connectivity:    kolam.Connected,
		HasEulerianPath: true,
		SymmetryScore:   2.0 / 3.0,
		RotationalFold:  2,
		GridPattern:     "3x3 grid",
		Region:          "Kerala (complex nature-inspired style)",
	})

	assert.Equal(t, 0.67, r.SymmetryScore)
	assert.Equal(t, 4, r.ClosedLoops)
	assert.True(t, r.IsEulerian)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"dot_count", "line_count", "symmetry_score", "rotational_symmetry_fold",
		"closed_loops", "connectivity", "is_eulerian", "grid_pattern", "region",
	}, keys)
}

func TestRecords(t *testing.T) {
	dots := DotRecords([]kolam.Dot{{X: 3, Y: 4, Radius: 5}})
	lines := LineRecords([]kolam.Line{{P1: kolam.Point{X: 1, Y: 2}, P2: kolam.Point{X: 3, Y: 4}}})

	data, err := json.Marshal(map[string]any{"dots": dots, "lines": lines})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"dots": [{"x": 3, "y": 4, "radius": 5}],
		"lines": [{"start": [1, 2], "end": [3, 4]}]
	}`, string(data))

	empty, err := json.Marshal(LineRecords(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}
