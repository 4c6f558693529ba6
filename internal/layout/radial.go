package layout

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// Radial describes a layout of concentric rings about the dot centroid.
type Radial struct {
	IsRadial bool    `json:"is_radial"`
	CenterX  float64 `json:"center_x"`
	CenterY  float64 `json:"center_y"`

	// Rings lists the dot indices of each ring, innermost first, each ring
	// sorted by angle about the centre.
	Rings [][]int `json:"rings"`

	// Hub is the index of a dot sitting on the centre, or -1.
	Hub int `json:"hub"`
}

const (
	minRadialDots = 5
	minRingDots   = 3

	// ringCV bounds the spread of distances within one ring.
	ringCV = 0.1

	// angleCV bounds the unevenness of angular gaps within one ring.
	angleCV = 0.35

	// minRadialCoverage is the share of off-centre dots that must sit on
	// a valid ring.
	minRadialCoverage = 0.7
)

// DetectRadial groups dots into rings by their distance from the centroid.
// A new ring starts wherever consecutive sorted distances jump by more than
// max(5, 10% of the largest distance). A ring is valid when it holds at least
// three dots with tightly matched distances and evenly spread angles; the
// layout is radial when valid rings hold at least 70% of the off-centre dots.
func DetectRadial(dots []kolam.Dot) Radial {
	res := Radial{Hub: -1}
	if len(dots) < minRadialDots {
		return res
	}

	xs := make([]float64, len(dots))
	ys := make([]float64, len(dots))
	for i, d := range dots {
		xs[i] = float64(d.X)
		ys[i] = float64(d.Y)
	}
	res.CenterX = stat.Mean(xs, nil)
	res.CenterY = stat.Mean(ys, nil)

	type polar struct {
		idx   int
		dist  float64
		angle float64
	}
	points := make([]polar, 0, len(dots))
	maxDist := 0.0
	for i := range dots {
		dx, dy := xs[i]-res.CenterX, ys[i]-res.CenterY
		p := polar{idx: i, dist: math.Hypot(dx, dy), angle: math.Atan2(dy, dx)}
		points = append(points, p)
		maxDist = math.Max(maxDist, p.dist)
	}
	if maxDist == 0 {
		return res
	}

	sort.SliceStable(points, func(a, b int) bool { return points[a].dist < points[b].dist })
	if points[0].dist < 0.1*maxDist {
		res.Hub = points[0].idx
		points = points[1:]
	}
	if len(points) == 0 {
		return res
	}

	jump := math.Max(5, 0.1*maxDist)
	groups := [][]polar{{points[0]}}
	for i := 1; i < len(points); i++ {
		if points[i].dist-points[i-1].dist > jump {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], points[i])
	}

	onRings := 0
	for _, g := range groups {
		if len(g) < minRingDots {
			continue
		}
		dists := make([]float64, len(g))
		for i, p := range g {
			dists[i] = p.dist
		}
		mean, std := stat.MeanStdDev(dists, nil)
		if mean == 0 || std/mean > ringCV {
			continue
		}

		sort.SliceStable(g, func(a, b int) bool { return g[a].angle < g[b].angle })
		gaps := make([]float64, len(g))
		for i := range g {
			next := g[(i+1)%len(g)].angle
			if i == len(g)-1 {
				next += 2 * math.Pi
			}
			gaps[i] = next - g[i].angle
		}
		gapMean, gapStd := stat.MeanStdDev(gaps, nil)
		if gapStd/gapMean > angleCV {
			continue
		}

		ring := make([]int, len(g))
		for i, p := range g {
			ring[i] = p.idx
		}
		res.Rings = append(res.Rings, ring)
		onRings += len(g)
	}

	res.IsRadial = len(res.Rings) > 0 &&
		float64(onRings) >= minRadialCoverage*float64(len(points))
	return res
}
