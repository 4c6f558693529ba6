package builder

import (
	"math"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// spatialIndex buckets dots into square cells for nearest-neighbour queries.
type spatialIndex struct {
	dots       []kolam.Dot
	cell       float64
	minX, minY float64
	cols, rows int
	buckets    [][]int
}

// newSpatialIndex sizes cells so that each holds about one dot on average.
func newSpatialIndex(dots []kolam.Dot) *spatialIndex {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, d := range dots {
		minX = math.Min(minX, float64(d.X))
		minY = math.Min(minY, float64(d.Y))
		maxX = math.Max(maxX, float64(d.X))
		maxY = math.Max(maxY, float64(d.Y))
	}
	w, h := maxX-minX+1, maxY-minY+1
	cell := math.Max(4, math.Sqrt(w*h/float64(len(dots))))

	ix := &spatialIndex{
		dots: dots,
		cell: cell,
		minX: minX,
		minY: minY,
		cols: int(w/cell) + 1,
		rows: int(h/cell) + 1,
	}
	ix.buckets = make([][]int, ix.cols*ix.rows)
	for i, d := range dots {
		c, r := ix.cellOf(float64(d.X), float64(d.Y))
		ix.buckets[r*ix.cols+c] = append(ix.buckets[r*ix.cols+c], i)
	}
	return ix
}

func (ix *spatialIndex) cellOf(x, y float64) (int, int) {
	return int(math.Floor((x - ix.minX) / ix.cell)), int(math.Floor((y - ix.minY) / ix.cell))
}

// nearestTwo returns the indices of the two dots closest to (x,y), nearest
// first. Ties go to the lower index. ok is false with fewer than two dots.
func (ix *spatialIndex) nearestTwo(x, y float64) (first, second int, ok bool) {
	if len(ix.dots) < 2 {
		return -1, -1, false
	}
	first, second = -1, -1
	d1, d2 := math.Inf(1), math.Inf(1)

	consider := func(i int) {
		d := math.Hypot(float64(ix.dots[i].X)-x, float64(ix.dots[i].Y)-y)
		switch {
		case d < d1 || (d == d1 && i < first):
			first, second = i, first
			d1, d2 = d, d1
		case d < d2 || (d == d2 && i < second):
			second, d2 = i, d
		}
	}

	qc, qr := ix.cellOf(x, y)
	maxRing := max(abs(qc), abs(qc-ix.cols+1), abs(qr), abs(qr-ix.rows+1))
	for ring := 0; ring <= maxRing; ring++ {
		for r := qr - ring; r <= qr+ring; r++ {
			if r < 0 || r >= ix.rows {
				continue
			}
			for c := qc - ring; c <= qc+ring; c++ {
				if c < 0 || c >= ix.cols {
					continue
				}
				if max(abs(r-qr), abs(c-qc)) != ring {
					continue
				}
				for _, i := range ix.buckets[r*ix.cols+c] {
					consider(i)
				}
			}
		}
		// Every dot in a farther ring is at least ring*cell away.
		if second >= 0 && d2 <= float64(ring)*ix.cell {
			break
		}
	}
	return first, second, second >= 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
