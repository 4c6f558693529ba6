package detection

import (
	"image"
	"math"
)

// component is an 8-connected group of foreground pixels.
type component struct {
	pixels     []image.Point
	minX, minY int
	maxX, maxY int

	// cracks counts pixel sides shared with background, an outline length
	// that overestimates a smooth perimeter by a factor of 4/π.
	cracks int
}

func (c *component) area() int { return len(c.pixels) }

func (c *component) centroid() (float64, float64) {
	var sx, sy float64
	for _, p := range c.pixels {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(c.pixels))
	return sx / n, sy / n
}

// circularity is the isoperimetric ratio 4πA/P², 1.0 for a perfect disc.
func (c *component) circularity() float64 {
	perimeter := float64(c.cracks) * math.Pi / 4
	if perimeter == 0 {
		return 0
	}
	return math.Min(1, 4*math.Pi*float64(c.area())/(perimeter*perimeter))
}

// aspect is the bounding-box ratio of the longer side to the shorter.
func (c *component) aspect() float64 {
	w := float64(c.maxX - c.minX + 1)
	h := float64(c.maxY - c.minY + 1)
	return math.Max(w, h) / math.Min(w, h)
}

// inertiaRatio is the ratio of the minor to the major second moment, 1.0
// for a disc and near 0 for a thin stroke.
func (c *component) inertiaRatio() float64 {
	cx, cy := c.centroid()
	var mxx, myy, mxy float64
	for _, p := range c.pixels {
		dx, dy := float64(p.X)-cx, float64(p.Y)-cy
		mxx += dx * dx
		myy += dy * dy
		mxy += dx * dy
	}
	trace := mxx + myy
	if trace == 0 {
		return 1
	}
	disc := math.Sqrt((mxx-myy)*(mxx-myy) + 4*mxy*mxy)
	major := (trace + disc) / 2
	minor := (trace - disc) / 2
	if major == 0 {
		return 1
	}
	return minor / major
}

// findComponents groups the foreground pixels of a binary map into
// 8-connected components.
func findComponents(m *image.Gray) []*component {
	width, height := m.Rect.Dx(), m.Rect.Dy()
	visited := make([]bool, width*height)
	on := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < width && y < height && m.Pix[y*m.Stride+x] != 0
	}

	components := make([]*component, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !on(x, y) {
				continue
			}
			components = append(components, floodFill(on, visited, width, x, y))
		}
	}
	return components
}

// floodFill collects the component containing (startX, startY) with an
// explicit stack, so large components cannot overflow the call stack.
func floodFill(on func(x, y int) bool, visited []bool, width, startX, startY int) *component {
	c := &component{minX: startX, minY: startY, maxX: startX, maxY: startY}
	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.pixels = append(c.pixels, p)
		c.minX = min(c.minX, p.X)
		c.maxX = max(c.maxX, p.X)
		c.minY = min(c.minY, p.Y)
		c.maxY = max(c.maxY, p.Y)

		for _, d := range [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			if !on(p.X+d.X, p.Y+d.Y) {
				c.cracks++
			}
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if (dx == 0 && dy == 0) || !on(nx, ny) || visited[ny*width+nx] {
					continue
				}
				visited[ny*width+nx] = true
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}
	return c
}

// contourStrategy takes dots from the components of the cleaned binary map.
// A component qualifies when its area, circularity and aspect ratio are all
// dot-like; its centroid becomes the centre and its equal-area radius the
// radius.
type contourStrategy struct {
	p Params
}

func (c *contourStrategy) Name() string { return "contour" }

func (c *contourStrategy) Engage(accepted int) bool { return accepted < c.p.ContourBelow }

func (c *contourStrategy) Detect(s *Scene, _ []Candidate) Result {
	out := make([]Candidate, 0)
	for _, comp := range findComponents(s.Pre.Binary) {
		area := comp.area()
		if area < c.p.ContourMinArea || area > c.p.ContourMaxArea {
			continue
		}
		circ := comp.circularity()
		if circ < c.p.MinCircularity || comp.aspect() > c.p.MaxAspect {
			continue
		}
		x, y := comp.centroid()
		out = append(out, Candidate{
			X:      x,
			Y:      y,
			Radius: math.Sqrt(float64(area) / math.Pi),
			Score:  circ,
			Source: c.Name(),
		})
	}
	sortByScore(out)
	return Result{Candidates: out, Confidence: meanScore(out)}
}
