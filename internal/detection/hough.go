package detection

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	kimg "github.com/ironsheep/kolam-tools-mcp/internal/imaging"
)

// houghStrategy finds dots with a circular Hough transform over the Canny
// edge map.
//
// Each edge pixel votes for the two points at distance r along its gradient
// direction, once per radius in [MinRadius, MaxRadius]. A centre's score is
// the number of votes in its 3x3 neighbourhood divided by the circumference
// 2πr, so 1.0 means the whole rim voted for it. Only the best radius is kept
// per pixel. Images whose longer side exceeds HoughMaxSide vote on a
// downscaled edge map and the peaks are mapped back.
//
// Peaks are taken in descending score order, at least MinDistance apart, and
// accepted only if the dot core is darker than its neighbourhood mean minus
// one standard deviation, the ring around the dot is at least MinContrast
// brighter than the core, and the core disc is filled with ink. The last test
// rejects stroke ends and stroke bodies, which are too narrow to fill it.
type houghStrategy struct {
	p Params
}

func (h *houghStrategy) Name() string { return "hough" }

func (h *houghStrategy) Engage(int) bool { return true }

func (h *houghStrategy) Detect(s *Scene, _ []Candidate) Result {
	edges := s.Pre.Edges
	if edges == nil || h.p.MaxRadius < h.p.MinRadius || h.p.MinRadius < 1 {
		return Result{}
	}

	factor := 1.0
	if side := max(s.Width, s.Height); h.p.HoughMaxSide > 0 && side > h.p.HoughMaxSide {
		factor = float64(h.p.HoughMaxSide) / float64(side)
		w := max(1, int(math.Round(float64(s.Width)*factor)))
		hh := max(1, int(math.Round(float64(s.Height)*factor)))
		edges = kimg.CannyEdges(firstChannel(imaging.Resize(s.Pre.Equalized, w, hh, imaging.Box)))
		if edges == nil {
			return Result{}
		}
	}
	minR := max(1, int(math.Round(float64(h.p.MinRadius)*factor)))
	maxR := max(minR, int(math.Round(float64(h.p.MaxRadius)*factor)))

	peaks := houghPeaks(edges, minR, maxR, h.p.HoughThreshold)
	for i := range peaks {
		peaks[i].X /= factor
		peaks[i].Y /= factor
		peaks[i].Radius /= factor
		peaks[i].Source = h.Name()
	}
	sortByScore(peaks)

	accepted := make([]Candidate, 0)
	for _, c := range peaks {
		if tooClose(accepted, c, h.p.MinDistance) {
			continue
		}
		cx, cy := int(math.Round(c.X)), int(math.Round(c.Y))
		if !s.inBounds(cx, cy) {
			continue
		}
		radius := kimg.DiscRadius(s.Pre.Binary, cx, cy, h.p.MaxRadius+h.p.MinRadius)
		if radius < h.p.MinRadius {
			continue
		}
		if !darkCore(s.Gray, cx, cy, radius, h.p.MinContrast) {
			continue
		}
		if !filledCore(s.Gray, cx, cy, radius, s.Pre.OtsuLevel) {
			continue
		}
		c.X, c.Y = float64(cx), float64(cy)
		c.Radius = float64(radius)
		accepted = append(accepted, c)
	}

	return Result{Candidates: accepted, Confidence: meanScore(accepted)}
}

// houghPeaks votes over edges for radii in [minR, maxR] and returns the local
// score maxima at or above threshold, in edge-map coordinates.
func houghPeaks(edges *kimg.EdgeMap, minR, maxR int, threshold float64) []Candidate {
	width, height := edges.Width, edges.Height

	type edgePixel struct {
		x, y   int
		ux, uy float64
	}
	points := make([]edgePixel, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges.IsEdge(x, y) {
				continue
			}
			gx, gy := edges.Gradient(x, y)
			mag := math.Hypot(gx, gy)
			if mag == 0 {
				continue
			}
			points = append(points, edgePixel{x: x, y: y, ux: gx / mag, uy: gy / mag})
		}
	}
	if len(points) == 0 {
		return nil
	}

	best := make([]float64, width*height)
	bestRadius := make([]int, width*height)
	box := make([]int, width*height)
	touched := make([]int, 0)

	for radius := minR; radius <= maxR; radius++ {
		r := float64(radius)
		circumference := 2 * math.Pi * r

		// Each vote is spread over its 3x3 neighbourhood so box[i] is the
		// 3x3 vote sum around i.
		for _, pt := range points {
			for _, sign := range [2]float64{-1, 1} {
				cx := int(math.Round(float64(pt.x) + sign*r*pt.ux))
				cy := int(math.Round(float64(pt.y) + sign*r*pt.uy))
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						vx, vy := cx+dx, cy+dy
						if vx < 0 || vy < 0 || vx >= width || vy >= height {
							continue
						}
						i := vy*width + vx
						if box[i] == 0 {
							touched = append(touched, i)
						}
						box[i]++
					}
				}
			}
		}

		for _, i := range touched {
			score := float64(box[i]) / circumference
			if score > best[i] {
				best[i] = score
				bestRadius[i] = radius
			}
			box[i] = 0
		}
		touched = touched[:0]
	}

	peaks := make([]Candidate, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if best[i] < threshold || !localMax(best, width, height, x, y) {
				continue
			}
			peaks = append(peaks, Candidate{
				X:      float64(x),
				Y:      float64(y),
				Radius: float64(bestRadius[i]),
				Score:  math.Min(best[i], 1),
			})
		}
	}
	return peaks
}

// localMax reports whether v at (x,y) is at least as large as its 8
// neighbours.
func localMax(v []float64, width, height, x, y int) bool {
	c := v[y*width+x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			if v[ny*width+nx] > c {
				return false
			}
		}
	}
	return true
}

func tooClose(accepted []Candidate, c Candidate, minDist float64) bool {
	for _, a := range accepted {
		if a.dist(c) < minDist {
			return true
		}
	}
	return false
}

// darkCore reports whether the core of a dot of the given radius is darker
// than its neighbourhood mean minus one standard deviation, and whether the
// surrounding ring is at least minContrast brighter than the core.
func darkCore(gray *image.Gray, cx, cy, radius int, minContrast float64) bool {
	coreHalf := radius / 2
	if coreHalf < 1 {
		coreHalf = 1
	}
	core, _ := kimg.WindowStats(gray, cx, cy, coreHalf)
	mean, std := kimg.WindowStats(gray, cx, cy, 2*radius)
	if core >= mean-std {
		return false
	}
	ring := kimg.RingMean(gray, cx, cy, radius+1, 2*radius)
	return ring-core >= minContrast
}

// filledCore reports whether at least three quarters of the disc of radius
// max(2, 0.7*radius) around (cx,cy) is at or below level.
func filledCore(gray *image.Gray, cx, cy, radius int, level uint8) bool {
	cr := math.Max(2, 0.7*float64(radius))
	reach := int(cr)
	dark, total := 0, 0
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			if float64(dx*dx+dy*dy) > cr*cr {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < 0 || y < 0 || x >= gray.Rect.Dx() || y >= gray.Rect.Dy() {
				continue
			}
			total++
			if gray.Pix[y*gray.Stride+x] <= level {
				dark++
			}
		}
	}
	return total > 0 && 4*dark >= 3*total
}
