package imaging

import (
	"image"
	"math"
)

// EdgeMap is the result of Canny edge detection over an intensity map.
//
// Edges holds 255 for edge pixels and 0 elsewhere. GX and GY keep the Sobel
// gradients of the smoothed intensity (row-major, values on a 0-1 intensity
// scale) so that circle voting can follow the gradient direction.
type EdgeMap struct {
	Width  int
	Height int
	Edges  *image.Gray
	GX     []float64
	GY     []float64
}

// IsEdge reports whether (x,y) is an edge pixel.
func (e *EdgeMap) IsEdge(x, y int) bool {
	return On(e.Edges, x, y)
}

// Gradient returns the Sobel gradient at (x,y).
func (e *EdgeMap) Gradient(x, y int) (gx, gy float64) {
	i := y*e.Width + x
	return e.GX[i], e.GY[i]
}

// Count returns the number of edge pixels.
func (e *EdgeMap) Count() int {
	n := 0
	for _, v := range e.Edges.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// EdgeDetect performs Canny edge detection on an intensity map.
//
// Parameters:
//   - gray: zero-origin intensity map.
//   - thresholdLow: gradients below this (0-255 scale) are discarded.
//   - thresholdHigh: gradients above this are always kept.
//
// # Algorithm
//
//  1. Gaussian blur: 5x5 kernel to reduce noise
//  2. Gradient computation: Sobel operators for X and Y
//  3. Non-maximum suppression: keep local maxima along the gradient direction
//  4. Hysteresis: strong edges are kept, weak edges only next to a strong one
//
// Returns nil for a nil or empty map.
func EdgeDetect(gray *image.Gray, thresholdLow, thresholdHigh int) *EdgeMap {
	if gray == nil || gray.Rect.Empty() {
		return nil
	}
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()

	src := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src[y*width+x] = float64(gray.Pix[y*gray.Stride+x]) / 255.0
		}
	}

	blurred := gaussianBlur(src, width, height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	gradX := make([]float64, width*height)
	gradY := make([]float64, width*height)
	magnitude := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					v := blurred[py*width+px]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			gradX[i] = gx
			gradY[i] = gy
			magnitude[i] = math.Sqrt(gx*gx + gy*gy)
		}
	}

	// Non-maximum suppression
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := math.Atan2(gradY[i], gradX[i])
			mag := magnitude[i]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			default:
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	edges := image.NewGray(image.Rect(0, 0, width, height))
	lowThresh := float64(thresholdLow) / 255.0
	highThresh := float64(thresholdHigh) / 255.0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y*width+x]
			if val >= highThresh {
				edges.Pix[y*edges.Stride+x] = 255
				continue
			}
			if val < lowThresh || val == 0 {
				continue
			}
			hasStrongNeighbor := false
			for ky := -1; ky <= 1 && !hasStrongNeighbor; ky++ {
				for kx := -1; kx <= 1 && !hasStrongNeighbor; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					if suppressed[py*width+px] >= highThresh {
						hasStrongNeighbor = true
					}
				}
			}
			if hasStrongNeighbor {
				edges.Pix[y*edges.Stride+x] = 255
			}
		}
	}

	return &EdgeMap{
		Width:  width,
		Height: height,
		Edges:  edges,
		GX:     gradX,
		GY:     gradY,
	}
}

// gaussianBlur applies a 5x5 Gaussian blur (sigma ≈ 1.4, kernel sum 273).
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(img []float64, width, height int) []float64 {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	const kernelSum = 273.0

	result := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += img[py*width+px] * kernel[ky+2][kx+2]
				}
			}
			result[y*width+x] = sum / kernelSum
		}
	}
	return result
}
