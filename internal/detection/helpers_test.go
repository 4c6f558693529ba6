package detection

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// drawKolam renders black filled discs joined by black segments of the given
// thickness on a white background.
func drawKolam(width, height int, centers [][2]int, radius int, segments [][2]int, thickness int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, s := range segments {
		a, b := centers[s[0]], centers[s[1]]
		steps := max(abs(b[0]-a[0])+abs(b[1]-a[1]), 1)
		half := thickness / 2
		for i := 0; i <= steps; i++ {
			x := a[0] + (b[0]-a[0])*i/steps
			y := a[1] + (b[1]-a[1])*i/steps
			for dy := -half; dy < thickness-half; dy++ {
				for dx := -half; dx < thickness-half; dx++ {
					img.SetGray(x+dx, y+dy, color.Gray{Y: 0})
				}
			}
		}
	}
	for _, c := range centers {
		for y := c[1] - radius; y <= c[1]+radius; y++ {
			for x := c[0] - radius; x <= c[0]+radius; x++ {
				if (x-c[0])*(x-c[0])+(y-c[1])*(y-c[1]) <= radius*radius {
					img.SetGray(x, y, color.Gray{Y: 0})
				}
			}
		}
	}
	return img
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// squareKolam is four dots at the corners of a square, joined along its sides.
func squareKolam() (*image.Gray, [][2]int) {
	centers := [][2]int{{30, 30}, {80, 30}, {30, 80}, {80, 80}}
	img := drawKolam(120, 120, centers, 6, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}}, 2)
	return img, centers
}

// assertNear fails unless every expected centre has a candidate within tol.
func assertNear(t *testing.T, got []Candidate, want [][2]int, tol float64) {
	t.Helper()
	for _, w := range want {
		found := false
		for _, c := range got {
			if math.Hypot(c.X-float64(w[0]), c.Y-float64(w[1])) <= tol {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no candidate within %.1fpx of (%d,%d); got %+v", tol, w[0], w[1], got)
		}
	}
}
