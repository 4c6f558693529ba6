package detection

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	kimg "github.com/ironsheep/kolam-tools-mcp/internal/imaging"
)

// discTemplate is a dark filled disc on a light square, with its values
// centred to zero mean for normalized cross-correlation.
type discTemplate struct {
	radius int
	half   int
	values []float64
	norm   float64
}

func newDiscTemplate(radius int) *discTemplate {
	pad := max(2, radius/2)
	half := radius + pad
	size := 2*half + 1

	values := make([]float64, size*size)
	var sum float64
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			v := 255.0
			if dx*dx+dy*dy <= radius*radius {
				v = 0
			}
			values[(dy+half)*size+dx+half] = v
			sum += v
		}
	}
	mean := sum / float64(len(values))
	var sq float64
	for i := range values {
		values[i] -= mean
		sq += values[i] * values[i]
	}
	return &discTemplate{radius: radius, half: half, values: values, norm: math.Sqrt(sq)}
}

// correlate returns the normalized cross-correlation of the template centred
// on (cx,cy). The caller guarantees the window lies inside the map.
func (t *discTemplate) correlate(m *image.Gray, cx, cy int) float64 {
	size := 2*t.half + 1
	n := float64(size * size)
	var sum, sumSq, dot float64
	for dy := -t.half; dy <= t.half; dy++ {
		row := (cy+dy)*m.Stride + cx - t.half
		trow := (dy + t.half) * size
		for dx := 0; dx < size; dx++ {
			v := float64(m.Pix[row+dx])
			sum += v
			sumSq += v * v
			dot += v * t.values[trow+dx]
		}
	}
	variance := sumSq - sum*sum/n
	if variance <= 0 || t.norm == 0 {
		return 0
	}
	return dot / (math.Sqrt(variance) * t.norm)
}

// templateStrategy correlates filled-disc templates of several radii with the
// intensity map and accepts local maxima above TemplateThreshold. Only pixels
// darker than the Otsu level are evaluated as centres, and large images are
// downscaled to TemplateMaxSide first.
type templateStrategy struct {
	p Params
}

func (t *templateStrategy) Name() string { return "template" }

func (t *templateStrategy) Engage(accepted int) bool { return accepted < t.p.TemplateBelow }

func (t *templateStrategy) Detect(s *Scene, _ []Candidate) Result {
	gray := s.Gray
	factor := 1.0
	if side := max(s.Width, s.Height); t.p.TemplateMaxSide > 0 && side > t.p.TemplateMaxSide {
		factor = float64(t.p.TemplateMaxSide) / float64(side)
		w := max(1, int(math.Round(float64(s.Width)*factor)))
		h := max(1, int(math.Round(float64(s.Height)*factor)))
		gray = firstChannel(imaging.Resize(gray, w, h, imaging.Box))
	}
	width, height := gray.Rect.Dx(), gray.Rect.Dy()
	level := kimg.OtsuLevel(gray)

	peaks := make([]Candidate, 0)
	scores := make([]float64, width*height)
	for _, radius := range t.p.TemplateRadii {
		r := int(math.Round(float64(radius) * factor))
		if r < 1 {
			continue
		}
		tmpl := newDiscTemplate(r)
		for i := range scores {
			scores[i] = -1
		}
		for y := tmpl.half; y < height-tmpl.half; y++ {
			for x := tmpl.half; x < width-tmpl.half; x++ {
				if gray.Pix[y*gray.Stride+x] > level {
					continue
				}
				scores[y*width+x] = tmpl.correlate(gray, x, y)
			}
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				score := scores[y*width+x]
				if score < t.p.TemplateThreshold || !localMax(scores, width, height, x, y) {
					continue
				}
				peaks = append(peaks, Candidate{
					X:      float64(x) / factor,
					Y:      float64(y) / factor,
					Radius: float64(radius),
					Score:  math.Min(1, score),
					Source: t.Name(),
				})
			}
		}
	}

	sortByScore(peaks)
	out := make([]Candidate, 0)
	for _, c := range peaks {
		if tooCloseToRadius(out, c) {
			continue
		}
		out = append(out, c)
	}
	return Result{Candidates: out, Confidence: meanScore(out)}
}

// tooCloseToRadius reports whether c lies inside the disc of an accepted
// candidate or an accepted candidate lies inside c.
func tooCloseToRadius(accepted []Candidate, c Candidate) bool {
	for _, a := range accepted {
		if a.dist(c) < math.Max(a.Radius, c.Radius) {
			return true
		}
	}
	return false
}
