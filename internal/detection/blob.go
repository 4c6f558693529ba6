package detection

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	kimg "github.com/ironsheep/kolam-tools-mcp/internal/imaging"
)

// Blob detection runs over an inverted intensity map, so dots are bright.
// A grayscale opening first flattens strokes thinner than the structuring
// element, which detaches dots from the lines drawn through them.
const (
	blobOpenRadius    = 2.0
	blobMinArea       = 5
	blobMaxArea       = 1000
	blobMinCirc       = 0.3
	blobMinInertia    = 0.1
	blobMinRepeatable = 2
)

var blobLevels = []uint8{64, 96, 128, 160, 192}

// blobStrategy is a multi-scale blob detector with relaxed shape filters.
// Every (scale, level) pair thresholds the stroke-suppressed map and keeps
// components passing area, circularity and inertia filters; a blob must be
// found by at least two pairs to become a candidate.
type blobStrategy struct {
	p Params
}

func (b *blobStrategy) Name() string { return "blob" }

func (b *blobStrategy) Engage(accepted int) bool { return accepted < b.p.BlobBelow }

type blobGroup struct {
	sumX, sumY, sumR float64
	hits             int
}

func (g *blobGroup) mean() (x, y, r float64) {
	n := float64(g.hits)
	return g.sumX / n, g.sumY / n, g.sumR / n
}

func (b *blobStrategy) Detect(s *Scene, _ []Candidate) Result {
	inverted := kimg.Invert(s.Gray)
	base := kimg.OpenGray(inverted, blobOpenRadius)

	groups := make([]*blobGroup, 0)
	runs := 0
	for _, scale := range b.p.BlobScales {
		if scale <= 0 {
			continue
		}
		scaled := base
		if scale != 1 {
			w := int(math.Round(float64(s.Width) * scale))
			h := int(math.Round(float64(s.Height) * scale))
			if w < 1 || h < 1 {
				continue
			}
			scaled = firstChannel(imaging.Resize(base, w, h, imaging.Linear))
		}

		for _, level := range blobLevels {
			runs++
			for _, comp := range findComponents(segment.Threshold(scaled, level)) {
				area := float64(comp.area())
				if area < blobMinArea*scale*scale || area > blobMaxArea*scale*scale {
					continue
				}
				if comp.circularity() < blobMinCirc || comp.inertiaRatio() < blobMinInertia {
					continue
				}
				cx, cy := comp.centroid()
				x, y := cx/scale, cy/scale
				r := math.Sqrt(area/math.Pi) / scale
				addToGroup(&groups, x, y, r)
			}
		}
	}

	out := make([]Candidate, 0)
	for _, g := range groups {
		if g.hits < blobMinRepeatable {
			continue
		}
		x, y, r := g.mean()
		out = append(out, Candidate{
			X:      x,
			Y:      y,
			Radius: r,
			Score:  math.Min(1, float64(g.hits)/float64(runs)),
			Source: b.Name(),
		})
	}
	sortByScore(out)
	return Result{Candidates: out, Confidence: meanScore(out)}
}

// addToGroup folds a blob into the first group whose mean centre lies within
// its radius, or starts a new group.
func addToGroup(groups *[]*blobGroup, x, y, r float64) {
	for _, g := range *groups {
		gx, gy, gr := g.mean()
		if math.Hypot(gx-x, gy-y) < math.Max(gr, r) {
			g.sumX += x
			g.sumY += y
			g.sumR += r
			g.hits++
			return
		}
	}
	*groups = append(*groups, &blobGroup{sumX: x, sumY: y, sumR: r, hits: 1})
}

// firstChannel converts a gray-replicated NRGBA raster back to a gray map.
func firstChannel(img *image.NRGBA) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			out.Pix[y*out.Stride+x] = row[x*4]
		}
	}
	return out
}
