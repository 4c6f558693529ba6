package builder

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
	"github.com/ironsheep/kolam-tools-mcp/internal/layout"
)

func squareDots() []kolam.Dot {
	return []kolam.Dot{
		{X: 30, Y: 30, Radius: 6},
		{X: 80, Y: 30, Radius: 6},
		{X: 30, Y: 80, Radius: 6},
		{X: 80, Y: 80, Radius: 6},
	}
}

// strokes returns a binary map with 2px foreground strokes between the
// given dot pairs.
func strokes(width, height int, dots []kolam.Dot, pairs [][2]int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	for _, p := range pairs {
		a, b := dots[p[0]], dots[p[1]]
		steps := max(abs(b.X-a.X)+abs(b.Y-a.Y), 1)
		for i := 0; i <= steps; i++ {
			x := a.X + (b.X-a.X)*i/steps
			y := a.Y + (b.Y-a.Y)*i/steps
			for dy := -1; dy < 1; dy++ {
				for dx := -1; dx < 1; dx++ {
					if image.Pt(x+dx, y+dy).In(m.Rect) {
						m.Pix[(y+dy)*m.Stride+x+dx] = 255
					}
				}
			}
		}
	}
	return m
}

var squareSides = [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}}

func assertConsistent(t *testing.T, p *kolam.Pattern) {
	t.Helper()
	require.Equal(t, len(p.Dots), p.Graph.Order())
	require.Len(t, p.Lines, p.Graph.Size())
	for _, k := range p.Graph.Edges() {
		a, b := p.Graph.Pos(k.U), p.Graph.Pos(k.V)
		found := false
		for _, l := range p.Lines {
			if l.Matches(a, b) {
				found = true
				break
			}
		}
		assert.True(t, found, "no line for edge %v", k)
	}
}

func TestNearestTwo(t *testing.T) {
	ix := newSpatialIndex(squareDots())

	first, second, ok := ix.nearestTwo(55, 31)
	require.True(t, ok)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	// Equidistant from all four: ties go to the lower indices.
	first, second, ok = ix.nearestTwo(55, 55)
	require.True(t, ok)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	first, second, ok = ix.nearestTwo(200, 200)
	require.True(t, ok)
	assert.Equal(t, 3, first)
	assert.Contains(t, []int{1, 2}, second)

	_, _, ok = newSpatialIndex([]kolam.Dot{{X: 1, Y: 1}}).nearestTwo(0, 0)
	assert.False(t, ok)
}

func TestNearestTwo_MatchesBruteForce(t *testing.T) {
	dots := make([]kolam.Dot, 0, 40)
	for i := 0; i < 40; i++ {
		dots = append(dots, kolam.Dot{X: (i * 37) % 211, Y: (i * 53) % 157})
	}
	ix := newSpatialIndex(dots)

	for y := 0; y < 160; y += 13 {
		for x := 0; x < 215; x += 11 {
			first, _, ok := ix.nearestTwo(float64(x), float64(y))
			require.True(t, ok)

			best := 0
			pt := kolam.Point{X: x, Y: y}
			for i := range dots {
				if pt.Dist(dots[i].Pos()) < pt.Dist(dots[best].Pos()) {
					best = i
				}
			}
			assert.InDelta(t, pt.Dist(dots[best].Pos()), pt.Dist(dots[first].Pos()), 1e-9)
		}
	}
}

func TestInCorridor(t *testing.T) {
	a, b := kolam.Dot{X: 0, Y: 0}, kolam.Dot{X: 100, Y: 0}

	assert.True(t, inCorridor(a, b, 50, 9, 10))
	assert.True(t, inCorridor(a, b, 0, 0, 10))
	assert.False(t, inCorridor(a, b, 50, 11, 10))
	assert.False(t, inCorridor(a, b, -1, 0, 10))
	assert.False(t, inCorridor(a, b, 101, 0, 10))
	assert.False(t, inCorridor(a, a, 0, 0, 10))
}

func TestConnectTraced(t *testing.T) {
	dots := squareDots()
	binary := strokes(120, 120, dots, squareSides)

	t.Run("all pixels", func(t *testing.T) {
		p := kolam.NewPattern(dots)
		b := New(DefaultParams())

		assert.Equal(t, 4, b.connectTraced(p, binary))
		assert.Equal(t, []kolam.EdgeKey{{U: 0, V: 1}, {U: 0, V: 2}, {U: 1, V: 3}, {U: 2, V: 3}}, p.Graph.Edges())
		attr, ok := p.Graph.Attr(0, 1)
		require.True(t, ok)
		assert.Equal(t, kolam.EdgeTraced, attr.Kind)
		assertConsistent(t, p)
	})

	t.Run("sampled", func(t *testing.T) {
		params := DefaultParams()
		params.SampleLimit = 50
		p := kolam.NewPattern(dots)

		assert.Equal(t, 4, New(params).connectTraced(p, binary))
	})

	t.Run("vote threshold", func(t *testing.T) {
		params := DefaultParams()
		params.MinVotes = 10000
		p := kolam.NewPattern(dots)

		assert.Zero(t, New(params).connectTraced(p, binary))
	})

	t.Run("no line map", func(t *testing.T) {
		p := kolam.NewPattern(dots)
		assert.Zero(t, New(DefaultParams()).connectTraced(p, nil))
		assert.Zero(t, New(DefaultParams()).connectTraced(p, image.NewGray(image.Rect(0, 0, 120, 120))))
	})
}

func TestConnectProximity(t *testing.T) {
	t.Run("below mean distance", func(t *testing.T) {
		// Pairwise distances 10, 100 and 90 give a threshold of 66.7.
		dots := []kolam.Dot{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 100, Y: 0}}
		p := kolam.NewPattern(dots)

		assert.Equal(t, 1, New(DefaultParams()).connectProximity(p))
		assert.True(t, p.Graph.HasEdge(0, 1))
		attr, _ := p.Graph.Attr(0, 1)
		assert.Equal(t, kolam.EdgeProximity, attr.Kind)
		assert.InDelta(t, 10.0, attr.Weight, 1e-9)
	})

	t.Run("square sides only", func(t *testing.T) {
		p := kolam.NewPattern(squareDots())

		assert.Equal(t, 4, New(DefaultParams()).connectProximity(p))
		assert.False(t, p.Graph.HasEdge(0, 3))
		assert.False(t, p.Graph.HasEdge(1, 2))
	})

	t.Run("implausibly close", func(t *testing.T) {
		p := kolam.NewPattern([]kolam.Dot{{X: 0, Y: 0}, {X: 3, Y: 0}})
		assert.Zero(t, New(DefaultParams()).connectProximity(p))
	})

	t.Run("existing edges kept", func(t *testing.T) {
		p := kolam.NewPattern(squareDots())
		require.True(t, p.Connect(0, 1, kolam.EdgeAttr{}))

		assert.Equal(t, 3, New(DefaultParams()).connectProximity(p))
		attr, _ := p.Graph.Attr(0, 1)
		assert.Equal(t, kolam.EdgeTraced, attr.Kind)
	})
}

func TestProximityFactor(t *testing.T) {
	assert.Equal(t, 1.0, proximityFactor(4))
	assert.Equal(t, 1.0, proximityFactor(10))
	assert.Equal(t, 0.75, proximityFactor(11))
	assert.Equal(t, 0.75, proximityFactor(20))
	assert.Equal(t, 0.5, proximityFactor(21))
}

func TestConnectLayout_Grid(t *testing.T) {
	dots := make([]kolam.Dot, 0, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			dots = append(dots, kolam.Dot{X: 10 + 20*c, Y: 10 + 20*r, Radius: 4})
		}
	}
	p := kolam.NewPattern(dots)

	added, kind := New(DefaultParams()).connectLayout(p)
	assert.Equal(t, "grid", kind)
	assert.Equal(t, 12, added)
	assert.True(t, p.Graph.HasEdge(0, 1))
	assert.True(t, p.Graph.HasEdge(0, 3))
	assert.False(t, p.Graph.HasEdge(0, 4))
	attr, _ := p.Graph.Attr(4, 5)
	assert.Equal(t, kolam.EdgePattern, attr.Kind)
	assertConsistent(t, p)
}

func TestConnectLayout_Scattered(t *testing.T) {
	dots := []kolam.Dot{{X: 3, Y: 90}, {X: 47, Y: 12}, {X: 88, Y: 61}, {X: 20, Y: 33}, {X: 70, Y: 5}}
	p := kolam.NewPattern(dots)

	added, kind := New(DefaultParams()).connectLayout(p)
	assert.Zero(t, added)
	assert.Empty(t, kind)
}

func TestConnectRings(t *testing.T) {
	dots := []kolam.Dot{{X: 50, Y: 50}, {X: 80, Y: 50}, {X: 50, Y: 80}, {X: 20, Y: 50}, {X: 50, Y: 20}}
	p := kolam.NewPattern(dots)

	added := connectRings(p, layout.Radial{IsRadial: true, Rings: [][]int{{1, 2, 3, 4}}, Hub: 0})
	assert.Equal(t, 4, added)
	assert.True(t, p.Graph.HasEdge(4, 1))
	assert.Zero(t, p.Graph.Degree(0))
}

func TestPruneHubs(t *testing.T) {
	// Leaves 1..8 sit 10, 20, ... 80px from the centre.
	dots := []kolam.Dot{
		{X: 100, Y: 100},
		{X: 110, Y: 100}, {X: 100, Y: 120}, {X: 70, Y: 100}, {X: 100, Y: 60},
		{X: 150, Y: 100}, {X: 100, Y: 160}, {X: 30, Y: 100}, {X: 100, Y: 20},
	}
	p := kolam.NewPattern(dots)
	for i := 1; i < len(dots); i++ {
		require.True(t, p.Connect(0, i, kolam.EdgeAttr{Kind: kolam.EdgeProximity}))
	}

	hubs, pruned := New(DefaultParams()).pruneHubs(p)
	assert.Equal(t, 1, hubs)
	assert.Equal(t, 4, pruned)
	assert.Equal(t, []int{1, 2, 3, 4}, p.Graph.Neighbors(0))
	assertConsistent(t, p)
}

func TestPruneHubs_RegularGraph(t *testing.T) {
	p := kolam.NewPattern(squareDots())
	for _, s := range squareSides {
		p.Connect(s[0], s[1], kolam.EdgeAttr{})
	}

	hubs, pruned := New(DefaultParams()).pruneHubs(p)
	assert.Zero(t, hubs)
	assert.Zero(t, pruned)
	assert.Equal(t, 4, p.Graph.Size())
}

func TestBuild_Square(t *testing.T) {
	dots := squareDots()
	p, stats := New(DefaultParams()).Build(dots, strokes(120, 120, dots, squareSides))

	assert.Equal(t, 4, stats.Traced)
	assert.Zero(t, stats.Proximity)
	assert.Zero(t, stats.Layout)
	assert.Equal(t, "grid", stats.LayoutKind)
	assert.Zero(t, stats.Pruned)
	assert.Equal(t, 4, p.Graph.Size())
	assertConsistent(t, p)
}

func TestBuild_Degenerate(t *testing.T) {
	b := New(DefaultParams())

	p, stats := b.Build(nil, nil)
	assert.Zero(t, p.Graph.Order())
	assert.Empty(t, p.Lines)
	assert.Equal(t, Stats{}, stats)

	p, _ = b.Build([]kolam.Dot{{X: 5, Y: 5, Radius: 3}}, nil)
	assert.Equal(t, 1, p.Graph.Order())
	assert.Zero(t, p.Graph.Size())
}

func TestBuild_WithoutLineMap(t *testing.T) {
	p, stats := New(DefaultParams()).Build(squareDots(), nil)

	assert.Zero(t, stats.Traced)
	assert.Equal(t, 4, stats.Proximity)
	assertConsistent(t, p)
}
