package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Intensity converts a raster to a zero-origin single-channel intensity map.
//
// Colour pixels are mapped through CIE L* (perceptual lightness) so the
// result does not depend on whether the decoder produced RGB or BGR channel
// order. Gray inputs are copied unchanged. Returns nil for an empty raster.
func Intensity(img image.Image) *image.Gray {
	if IsEmpty(img) {
		return nil
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			src := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+width], g.Pix[src:src+width])
		}
		return out
	}

	// Photographs repeat colours heavily; memoize the L* conversion.
	memo := make(map[uint32]uint8)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			key := (r>>8)<<16 | (g>>8)<<8 | b>>8
			v, ok := memo[key]
			if !ok {
				v = lightness(uint8(r>>8), uint8(g>>8), uint8(b>>8))
				memo[key] = v
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}

// lightness returns CIE L* scaled to 0-255.
func lightness(r, g, b uint8) uint8 {
	// Pure black and white stay exact.
	if r == g && g == b && (r == 0 || r == 255) {
		return r
	}
	c, _ := colorful.MakeColor(color.NRGBA{R: r, G: g, B: b, A: 255})
	l, _, _ := c.Lab()
	return uint8(math.Round(clampFloat(l, 0, 1) * 255))
}

// grayOf extracts the first channel of a gray-replicated RGBA raster produced
// by the bild filters.
func grayOf(img *image.RGBA) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			out.Pix[y*out.Stride+x] = row[x*4]
		}
	}
	return out
}

// binarize maps every non-zero pixel to 255.
func binarize(img *image.Gray) *image.Gray {
	for i, v := range img.Pix {
		if v != 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

// On reports whether (x,y) is a foreground pixel of a binary map. Coordinates
// outside the map are background.
func On(m *image.Gray, x, y int) bool {
	if x < 0 || y < 0 || x >= m.Rect.Dx() || y >= m.Rect.Dy() {
		return false
	}
	return m.Pix[y*m.Stride+x] != 0
}

// GrayAt returns the intensity at (x,y), clamping coordinates to the map.
func GrayAt(m *image.Gray, x, y int) uint8 {
	x = clamp(x, 0, m.Rect.Dx()-1)
	y = clamp(y, 0, m.Rect.Dy()-1)
	return m.Pix[y*m.Stride+x]
}

// WindowStats returns the mean and population standard deviation of the
// intensities in the square window of the given half-size centred on (cx,cy),
// restricted to the map.
func WindowStats(m *image.Gray, cx, cy, half int) (mean, std float64) {
	var sum, sumSq float64
	n := 0
	for y := cy - half; y <= cy+half; y++ {
		if y < 0 || y >= m.Rect.Dy() {
			continue
		}
		for x := cx - half; x <= cx+half; x++ {
			if x < 0 || x >= m.Rect.Dx() {
				continue
			}
			v := float64(m.Pix[y*m.Stride+x])
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// ForegroundCount returns the number of foreground pixels of m inside the
// disc of the given radius centred on (cx,cy).
func ForegroundCount(m *image.Gray, cx, cy, radius int) int {
	count := 0
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			if On(m, cx+dx, cy+dy) {
				count++
			}
		}
	}
	return count
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func clampFloat(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}

// DiscRadius measures the foreground disc centred on (cx,cy) as the number of
// consecutive unit-width rings, starting with the centre pixel, that are
// mostly foreground. The search stops after limit rings.
func DiscRadius(m *image.Gray, cx, cy, limit int) int {
	if limit < 0 {
		return 0
	}
	on := make([]int, limit+1)
	total := make([]int, limit+1)
	for dy := -limit; dy <= limit; dy++ {
		for dx := -limit; dx <= limit; dx++ {
			k := int(math.Sqrt(float64(dx*dx + dy*dy)))
			if k > limit {
				continue
			}
			total[k]++
			if On(m, cx+dx, cy+dy) {
				on[k]++
			}
		}
	}
	for k := 0; k <= limit; k++ {
		if 2*on[k] <= total[k] {
			return k
		}
	}
	return limit + 1
}

// RingMean returns the mean intensity of the pixels whose distance from
// (cx,cy) lies in [inner, outer], restricted to the map.
func RingMean(m *image.Gray, cx, cy, inner, outer int) float64 {
	var sum float64
	n := 0
	in2, out2 := inner*inner, outer*outer
	for dy := -outer; dy <= outer; dy++ {
		for dx := -outer; dx <= outer; dx++ {
			d2 := dx*dx + dy*dy
			if d2 < in2 || d2 > out2 {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < 0 || y < 0 || x >= m.Rect.Dx() || y >= m.Rect.Dy() {
				continue
			}
			sum += float64(m.Pix[y*m.Stride+x])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
