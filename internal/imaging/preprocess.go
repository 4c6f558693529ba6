package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
)

const (
	// smoothRadius gives bild a 5x5 Gaussian kernel.
	smoothRadius = 2.0

	// adaptiveRadius gives an 11x11 local-mean neighbourhood.
	adaptiveRadius = 5.0

	// adaptiveOffset is subtracted from the local mean before comparison.
	adaptiveOffset = 2

	cannyLow  = 50
	cannyHigh = 150
)

// Preprocess converts a raster into an inverted binary map in which line ink
// is foreground (255) and background is 0.
//
// The raster is converted to intensity, smoothed with a 5x5 Gaussian, and
// thresholded against an 11x11 Gaussian-weighted local mean so uneven lighting
// does not bias the split. Returns nil for a nil or zero-size raster.
func Preprocess(img image.Image) *image.Gray {
	gray := Intensity(img)
	if gray == nil {
		return nil
	}
	smoothed := Smooth(gray)
	return AdaptiveThreshold(smoothed, adaptiveRadius, adaptiveOffset)
}

// Preprocessed holds the complementary representations produced by
// PreprocessAdvanced.
type Preprocessed struct {
	// Gray is the raw intensity map.
	Gray *image.Gray

	// Equalized is the histogram-equalized intensity map.
	Equalized *image.Gray

	// Edges is the Canny edge map of the equalized intensity.
	Edges *EdgeMap

	// Binary is the cleaned foreground map: adaptive OR Otsu, then a 3x3
	// open followed by a 3x3 close.
	Binary *image.Gray

	// OtsuLevel is the global threshold chosen by Otsu's method.
	OtsuLevel uint8
}

// PreprocessAdvanced computes every representation the dot detector needs.
// Returns nil for a nil or zero-size raster.
func PreprocessAdvanced(img image.Image) *Preprocessed {
	gray := Intensity(img)
	if gray == nil {
		return nil
	}

	equalized := Equalize(gray)
	smoothed := Smooth(gray)

	adaptive := AdaptiveThreshold(smoothed, adaptiveRadius, adaptiveOffset)
	level := OtsuLevel(smoothed)
	global := ThresholdInv(smoothed, level)

	combined := Or(adaptive, global)
	cleaned := Close(Open(combined, 1), 1)

	return &Preprocessed{
		Gray:      gray,
		Equalized: equalized,
		Edges:     CannyEdges(equalized),
		Binary:    cleaned,
		OtsuLevel: level,
	}
}

// CannyEdges runs EdgeDetect with the preprocessing thresholds.
func CannyEdges(gray *image.Gray) *EdgeMap {
	return EdgeDetect(gray, cannyLow, cannyHigh)
}

// Smooth applies a 5x5 Gaussian blur to an intensity map.
func Smooth(gray *image.Gray) *image.Gray {
	return grayOf(blur.Gaussian(gray, smoothRadius))
}

// AdaptiveThreshold marks a pixel as foreground when it is darker than its
// Gaussian-weighted local mean minus offset.
func AdaptiveThreshold(gray *image.Gray, radius float64, offset int) *image.Gray {
	mean := grayOf(blur.Gaussian(gray, radius))
	width, height := gray.Rect.Dx(), gray.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := int(gray.Pix[y*gray.Stride+x])
			m := int(mean.Pix[y*mean.Stride+x])
			if v < m-offset {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// OtsuLevel returns the global threshold that maximizes between-class
// variance of the intensity histogram.
func OtsuLevel(gray *image.Gray) uint8 {
	bins := histogram.NewRGBAHistogram(gray).R.Bins

	total := 0
	var sumAll float64
	for v, n := range bins {
		total += n
		sumAll += float64(v * n)
	}
	if total == 0 {
		return 127
	}

	var sumBack float64
	weightBack := 0
	bestLevel := 0
	bestVar := -1.0
	for t := 0; t < len(bins); t++ {
		weightBack += bins[t]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t * bins[t])
		meanBack := sumBack / float64(weightBack)
		meanFore := (sumAll - sumBack) / float64(weightFore)
		between := float64(weightBack) * float64(weightFore) * (meanBack - meanFore) * (meanBack - meanFore)
		if between > bestVar {
			bestVar = between
			bestLevel = t
		}
	}
	return uint8(bestLevel)
}

// ThresholdInv marks pixels at or below level as foreground.
func ThresholdInv(gray *image.Gray, level uint8) *image.Gray {
	if level == 255 {
		out := image.NewGray(gray.Rect)
		for i := range out.Pix {
			out.Pix[i] = 255
		}
		return out
	}
	// segment.Threshold whitens pixels >= level; invert for ink-as-foreground.
	return Invert(segment.Threshold(gray, level+1))
}

// Invert swaps foreground and background of a binary map.
func Invert(m *image.Gray) *image.Gray {
	return grayOf(effect.Invert(m))
}

// Equalize spreads the intensity histogram across the full 0-255 range.
func Equalize(gray *image.Gray) *image.Gray {
	bins := histogram.NewRGBAHistogram(gray).R.Bins
	total := 0
	for _, n := range bins {
		total += n
	}

	var lut [256]uint8
	cdfMin := 0
	for _, n := range bins {
		if n > 0 {
			cdfMin = n
			break
		}
	}
	cum := 0
	for v := 0; v < len(bins) && v < 256; v++ {
		cum += bins[v]
		if total == cdfMin {
			lut[v] = uint8(v)
			continue
		}
		scaled := float64(cum-cdfMin) / float64(total-cdfMin) * 255
		lut[v] = uint8(clampFloat(scaled+0.5, 0, 255))
	}

	out := image.NewGray(gray.Rect)
	for i, v := range gray.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}

// Or combines two binary maps of equal size.
func Or(a, b *image.Gray) *image.Gray {
	out := image.NewGray(a.Rect)
	for i := range out.Pix {
		if a.Pix[i] != 0 || b.Pix[i] != 0 {
			out.Pix[i] = 255
		}
	}
	return out
}

// Open erodes then dilates a binary map, removing specks smaller than the
// structuring element of the given radius.
func Open(m *image.Gray, radius float64) *image.Gray {
	eroded := effect.Erode(m, radius)
	return binarize(grayOf(effect.Dilate(eroded, radius)))
}

// Close dilates then erodes a binary map, filling gaps narrower than the
// structuring element.
func Close(m *image.Gray, radius float64) *image.Gray {
	dilated := effect.Dilate(m, radius)
	return binarize(grayOf(effect.Erode(dilated, radius)))
}

// OpenGray applies a grayscale opening (erode then dilate). Bright structures
// narrower than the structuring element are flattened into their surroundings.
func OpenGray(m *image.Gray, radius float64) *image.Gray {
	return grayOf(effect.Dilate(effect.Erode(m, radius), radius))
}
