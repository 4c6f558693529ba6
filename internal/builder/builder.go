package builder

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
	"github.com/ironsheep/kolam-tools-mcp/internal/layout"
)

// Stats counts what each stage of a build contributed.
type Stats struct {
	Traced     int    `json:"traced"`
	Proximity  int    `json:"proximity"`
	Layout     int    `json:"layout"`
	LayoutKind string `json:"layout_kind,omitempty"`
	Hubs       int    `json:"hubs"`
	Pruned     int    `json:"pruned"`
}

// Builder turns a dot list and a binary line map into a Pattern.
// A Builder holds no per-image state and may be shared between goroutines.
type Builder struct {
	params Params
}

// New creates a builder.
func New(p Params) *Builder {
	return &Builder{params: p}
}

// Build connects dots using the traced, proximity and layout strategies,
// then prunes hubs. binary may be nil, in which case no edges are traced.
// The returned pattern has one graph node per dot and one line per edge.
func (b *Builder) Build(dots []kolam.Dot, binary *image.Gray) (*kolam.Pattern, Stats) {
	p := kolam.NewPattern(dots)
	var stats Stats
	if len(dots) < 2 {
		return p, stats
	}

	stats.Traced = b.connectTraced(p, binary)
	stats.Proximity = b.connectProximity(p)
	if b.params.UseLayout {
		stats.Layout, stats.LayoutKind = b.connectLayout(p)
	}
	stats.Hubs, stats.Pruned = b.pruneHubs(p)
	return p, stats
}

// connectTraced adds edges between dot pairs that enough line pixels vote for.
func (b *Builder) connectTraced(p *kolam.Pattern, binary *image.Gray) int {
	if binary == nil {
		return 0
	}
	width, height := binary.Rect.Dx(), binary.Rect.Dy()

	onPixels := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if binary.Pix[y*binary.Stride+x] != 0 {
				onPixels++
			}
		}
	}
	if onPixels == 0 {
		return 0
	}
	stride := 1
	if b.params.SampleLimit > 0 && onPixels > b.params.SampleLimit {
		stride = (onPixels + b.params.SampleLimit - 1) / b.params.SampleLimit
	}

	ix := newSpatialIndex(p.Dots)
	votes := make(map[kolam.EdgeKey]int)
	seen := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if binary.Pix[y*binary.Stride+x] == 0 {
				continue
			}
			seen++
			if (seen-1)%stride != 0 {
				continue
			}
			i, j, ok := ix.nearestTwo(float64(x), float64(y))
			if !ok || !inCorridor(p.Dots[i], p.Dots[j], float64(x), float64(y), b.params.CorridorWidth) {
				continue
			}
			votes[kolam.Key(i, j)]++
		}
	}

	keys := make([]kolam.EdgeKey, 0, len(votes))
	for k, n := range votes {
		if n >= b.params.MinVotes {
			keys = append(keys, k)
		}
	}
	sortKeys(keys)

	added := 0
	for _, k := range keys {
		if p.Connect(k.U, k.V, kolam.EdgeAttr{Kind: kolam.EdgeTraced, Weight: float64(votes[k])}) {
			added++
		}
	}
	return added
}

// inCorridor reports whether (x,y) projects onto the segment a-b and lies
// within width of it.
func inCorridor(a, b kolam.Dot, x, y, width float64) bool {
	ax, ay := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-ax, float64(b.Y)-ay
	length2 := dx*dx + dy*dy
	if length2 == 0 {
		return false
	}
	t := ((x-ax)*dx + (y-ay)*dy) / length2
	if t < 0 || t > 1 {
		return false
	}
	perp := math.Abs((x-ax)*dy-(y-ay)*dx) / math.Sqrt(length2)
	return perp <= width
}

// connectProximity adds an edge for every plausible pair closer than the
// mean pairwise distance scaled by proximityFactor.
func (b *Builder) connectProximity(p *kolam.Pattern) int {
	n := len(p.Dots)
	dist := make([][]float64, n)
	var sum float64
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := p.Dots[i].Pos().Dist(p.Dots[j].Pos())
			dist[i][j], dist[j][i] = d, d
			sum += d
		}
	}
	threshold := sum / float64(n*(n-1)/2) * proximityFactor(n)

	added := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist[i][j]
			if d > threshold || !b.plausible(d) {
				continue
			}
			if p.Connect(i, j, kolam.EdgeAttr{Kind: kolam.EdgeProximity, Weight: d}) {
				added++
			}
		}
	}
	return added
}

func (b *Builder) plausible(d float64) bool {
	return d >= b.params.MinDistance && d <= b.params.MaxDistance
}

// connectLayout adds lattice edges for a grid layout, or ring edges for a
// radial one.
func (b *Builder) connectLayout(p *kolam.Pattern) (int, string) {
	if fit := layout.FitGrid(p.Dots); fit.IsGrid {
		return connectGrid(p, fit), "grid"
	}
	if radial := layout.DetectRadial(p.Dots); radial.IsRadial {
		return connectRings(p, radial), "radial"
	}
	return 0, ""
}

// connectGrid joins dots in horizontally and vertically adjacent lattice
// cells. When several dots share a cell the lowest index represents it.
func connectGrid(p *kolam.Pattern, fit layout.GridFit) int {
	cells := make(map[[2]int]int, len(p.Dots))
	for i := range p.Dots {
		cell := [2]int{fit.Row[i], fit.Col[i]}
		if _, taken := cells[cell]; !taken {
			cells[cell] = i
		}
	}

	added := 0
	for r := 0; r < fit.Rows; r++ {
		for c := 0; c < fit.Cols; c++ {
			u, ok := cells[[2]int{r, c}]
			if !ok {
				continue
			}
			for _, next := range [2][2]int{{r, c + 1}, {r + 1, c}} {
				v, ok := cells[next]
				if !ok {
					continue
				}
				d := p.Dots[u].Pos().Dist(p.Dots[v].Pos())
				if p.Connect(u, v, kolam.EdgeAttr{Kind: kolam.EdgePattern, Weight: d}) {
					added++
				}
			}
		}
	}
	return added
}

// connectRings joins angularly adjacent dots around each ring.
func connectRings(p *kolam.Pattern, radial layout.Radial) int {
	added := 0
	for _, ring := range radial.Rings {
		for i, u := range ring {
			v := ring[(i+1)%len(ring)]
			d := p.Dots[u].Pos().Dist(p.Dots[v].Pos())
			if p.Connect(u, v, kolam.EdgeAttr{Kind: kolam.EdgePattern, Weight: d}) {
				added++
			}
		}
	}
	return added
}

// pruneHubs trims every node whose degree exceeds HubFactor times the mean
// degree down to its closest max(HubMinKeep, HubKeep*degree) neighbours.
// Hubs are identified once, before any edge is removed.
func (b *Builder) pruneHubs(p *kolam.Pattern) (hubs, pruned int) {
	g := p.Graph
	threshold := b.params.HubFactor * g.MeanDegree()
	if threshold <= 0 {
		return 0, 0
	}

	candidates := make([]int, 0)
	for n := 0; n < g.Order(); n++ {
		if float64(g.Degree(n)) > threshold {
			candidates = append(candidates, n)
		}
	}

	for _, h := range candidates {
		nbrs := g.Neighbors(h)
		keep := max(b.params.HubMinKeep, int(b.params.HubKeep*float64(len(nbrs))))
		if len(nbrs) <= keep {
			continue
		}
		hubs++
		origin := g.Pos(h)
		sort.SliceStable(nbrs, func(i, j int) bool {
			return origin.Dist(g.Pos(nbrs[i])) < origin.Dist(g.Pos(nbrs[j]))
		})
		for _, n := range nbrs[keep:] {
			if p.Disconnect(h, n) {
				pruned++
			}
		}
	}
	return hubs, pruned
}

func sortKeys(keys []kolam.EdgeKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].U != keys[j].U {
			return keys[i].U < keys[j].U
		}
		return keys[i].V < keys[j].V
	})
}
