package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// OverlayOptions controls how an extracted pattern is drawn over its source.
type OverlayOptions struct {
	// DotColor is a hex colour ("#RRGGBB" or "#RRGGBBAA") for dot outlines.
	DotColor string

	// LineColor is a hex colour for connections.
	LineColor string

	// ShowLabels draws each dot's index next to it.
	ShowLabels bool
}

// DefaultOverlayOptions returns red dots, green lines and no labels.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		DotColor:  "#FF0000",
		LineColor: "#00C000",
	}
}

// Overlay draws dots and lines over a copy of img and returns the result as
// base64 PNG. Invalid colours fall back to the defaults.
func Overlay(img image.Image, dots []kolam.Dot, lines []kolam.Line, opts OverlayOptions) (*EncodedImage, error) {
	if IsEmpty(img) {
		return nil, fmt.Errorf("cannot draw overlay on empty image")
	}
	canvas := Render(img, dots, lines, opts)
	return EncodePNG(canvas)
}

// Render draws dots and lines over a zero-origin RGBA copy of img.
func Render(img image.Image, dots []kolam.Dot, lines []kolam.Line, opts OverlayOptions) *image.RGBA {
	defaults := DefaultOverlayOptions()

	dotColor, err := parseHexColor(opts.DotColor)
	if err != nil {
		dotColor, _ = parseHexColor(defaults.DotColor)
	}
	lineColor, err := parseHexColor(opts.LineColor)
	if err != nil {
		lineColor, _ = parseHexColor(defaults.LineColor)
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	for _, l := range lines {
		drawSegment(canvas, l.P1, l.P2, lineColor)
	}

	for i, d := range dots {
		r := max(d.Radius, 2)
		drawCircle(canvas, d.X, d.Y, r, dotColor)
		if opts.ShowLabels {
			drawLabel(canvas, d.X+r+2, d.Y-r, strconv.Itoa(i), dotColor)
		}
	}

	return canvas
}

// drawSegment rasterizes a line with Bresenham's algorithm.
func drawSegment(img *image.RGBA, a, b kolam.Point, c color.RGBA) {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		setPixel(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// drawCircle draws a one-pixel circle outline with the midpoint algorithm.
func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	x, y := r, 0
	e := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			setPixel(img, cx+p[0], cy+p[1], c)
		}
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
}

// drawLabel writes text with its top-left corner at (x,y) using the 7x13
// bitmap face.
func drawLabel(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Rect) {
		img.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
