package layout

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// Irregular is the grid pattern of dots with no regular lattice.
const Irregular = "Irregular"

// GridPattern classifies a dot layout as "RxC grid", "N columns", "N rows" or
// "Irregular". An axis is regular when the gaps between its sorted unique
// coordinates are all equal after rounding to one decimal. Fewer than four
// dots are always irregular.
func GridPattern(dots []kolam.Dot) string {
	if len(dots) < 4 {
		return Irregular
	}

	xs := uniqueSorted(dots, func(d kolam.Dot) int { return d.X })
	ys := uniqueSorted(dots, func(d kolam.Dot) int { return d.Y })
	if len(xs) < 2 || len(ys) < 2 {
		return Irregular
	}

	xRegular := evenlySpaced(xs)
	yRegular := evenlySpaced(ys)
	switch {
	case xRegular && yRegular:
		return fmt.Sprintf("%dx%d grid", len(xs), len(ys))
	case xRegular:
		return fmt.Sprintf("%d columns", len(xs))
	case yRegular:
		return fmt.Sprintf("%d rows", len(ys))
	}
	return Irregular
}

func uniqueSorted(dots []kolam.Dot, coord func(kolam.Dot) int) []int {
	seen := make(map[int]struct{}, len(dots))
	out := make([]int, 0, len(dots))
	for _, d := range dots {
		v := coord(d)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func evenlySpaced(vals []int) bool {
	gaps := make(map[float64]struct{})
	for i := 1; i < len(vals); i++ {
		gaps[math.Round(float64(vals[i]-vals[i-1])*10)/10] = struct{}{}
	}
	return len(gaps) == 1
}

// GridFit is the result of the tolerant grid fit.
type GridFit struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	// Confidence combines clustering quality and spacing regularity
	// (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	IsGrid bool `json:"is_grid"`

	// ColCenters and RowCenters are the fitted lattice coordinates in
	// ascending order.
	ColCenters []float64 `json:"col_centers"`
	RowCenters []float64 `json:"row_centers"`

	// Col and Row give each dot's lattice cell, indexed like the dots.
	Col []int `json:"-"`
	Row []int `json:"-"`
}

const (
	// maxLines caps the candidate row and column counts tried.
	maxLines = 30

	// flatSpread is the coordinate spread below which an axis is a single
	// line.
	flatSpread = 3.0

	minGridConfidence = 0.7
	minGridOccupancy  = 0.5
)

// FitGrid finds the row and column counts that best explain the dot layout.
//
// For each axis, candidate counts k = 2..min(n, 30) split the sorted
// coordinates at their k-1 largest gaps; the split with the highest mean
// silhouette wins. Confidence is the mean silhouette of both axes scaled by
// one minus the mean coefficient of variation of the fitted line spacing.
// A layout is a grid when it has at least four dots, two rows and two
// columns, confidence of at least 0.7, and fills at least half its cells.
func FitGrid(dots []kolam.Dot) GridFit {
	fit := GridFit{}
	if len(dots) == 0 {
		return fit
	}

	xs := make([]float64, len(dots))
	ys := make([]float64, len(dots))
	for i, d := range dots {
		xs[i] = float64(d.X)
		ys[i] = float64(d.Y)
	}

	colCenters, cols, colSil := fitAxis(xs)
	rowCenters, rows, rowSil := fitAxis(ys)

	fit.Cols, fit.ColCenters, fit.Col = len(colCenters), colCenters, cols
	fit.Rows, fit.RowCenters, fit.Row = len(rowCenters), rowCenters, rows

	cv := (spacingCV(colCenters) + spacingCV(rowCenters)) / 2
	fit.Confidence = math.Max(0, (colSil+rowSil)/2*(1-math.Min(1, cv)))

	occupancy := float64(occupiedCells(fit.Col, fit.Row)) / float64(fit.Rows*fit.Cols)
	fit.IsGrid = len(dots) >= 4 && fit.Rows >= 2 && fit.Cols >= 2 &&
		fit.Confidence >= minGridConfidence && occupancy >= minGridOccupancy
	return fit
}

// fitAxis clusters one coordinate axis. It returns the ascending cluster
// centres, each value's cluster index, and the mean silhouette.
func fitAxis(vals []float64) ([]float64, []int, float64) {
	n := len(vals)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return vals[order[a]] < vals[order[b]] })

	if vals[order[n-1]]-vals[order[0]] <= flatSpread {
		return []float64{stat.Mean(vals, nil)}, make([]int, n), 1
	}

	bestLabels := make([]int, n)
	bestSil := math.Inf(-1)
	bestK := 1
	for k := 2; k <= min(n, maxLines); k++ {
		labels := splitAtGaps(vals, order, k)
		sil := silhouette(vals, labels, k)
		if sil > bestSil {
			bestSil, bestK = sil, k
			copy(bestLabels, labels)
		}
	}

	centers := make([]float64, bestK)
	counts := make([]int, bestK)
	for i, l := range bestLabels {
		centers[l] += vals[i]
		counts[l]++
	}
	for l := range centers {
		centers[l] /= float64(counts[l])
	}
	return centers, bestLabels, math.Max(0, bestSil)
}

// splitAtGaps labels sorted values 0..k-1 by cutting at the k-1 widest gaps.
func splitAtGaps(vals []float64, order []int, k int) []int {
	type gap struct {
		at    int
		width float64
	}
	gaps := make([]gap, 0, len(order)-1)
	for i := 1; i < len(order); i++ {
		gaps = append(gaps, gap{at: i, width: vals[order[i]] - vals[order[i-1]]})
	}
	sort.SliceStable(gaps, func(a, b int) bool { return gaps[a].width > gaps[b].width })

	cut := make([]bool, len(order))
	for _, g := range gaps[:k-1] {
		cut[g.at] = true
	}

	labels := make([]int, len(vals))
	label := 0
	for i, idx := range order {
		if cut[i] {
			label++
		}
		labels[idx] = label
	}
	return labels
}

// silhouette returns the mean silhouette coefficient of a 1-D clustering.
// Members of singleton clusters score 0.
func silhouette(vals []float64, labels []int, k int) float64 {
	n := len(vals)
	sums := make([]float64, k)
	counts := make([]int, k)
	scores := make([]float64, n)

	for i := 0; i < n; i++ {
		for c := range sums {
			sums[c] = 0
			counts[c] = 0
		}
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			sums[labels[j]] += math.Abs(vals[i] - vals[j])
			counts[labels[j]]++
		}

		own := labels[i]
		if counts[own] == 0 {
			continue
		}
		a := sums[own] / float64(counts[own])
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			b = math.Min(b, sums[c]/float64(counts[c]))
		}
		if math.IsInf(b, 1) {
			continue
		}
		if m := math.Max(a, b); m > 0 {
			scores[i] = (b - a) / m
		}
	}
	return stat.Mean(scores, nil)
}

// spacingCV is the coefficient of variation of the gaps between sorted
// centres; fewer than two gaps are perfectly regular.
func spacingCV(centers []float64) float64 {
	if len(centers) < 3 {
		return 0
	}
	gaps := make([]float64, len(centers)-1)
	for i := 1; i < len(centers); i++ {
		gaps[i-1] = centers[i] - centers[i-1]
	}
	mean, std := stat.MeanStdDev(gaps, nil)
	if mean == 0 {
		return 1
	}
	return std / mean
}

func occupiedCells(cols, rows []int) int {
	cells := make(map[[2]int]struct{}, len(cols))
	for i := range cols {
		cells[[2]int{rows[i], cols[i]}] = struct{}{}
	}
	return len(cells)
}
