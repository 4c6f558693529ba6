package detection

import (
	"math"

	"github.com/ironsheep/kolam-tools-mcp/internal/imaging"
)

// neighbourhoodHalf gives the 11x11 window the centre is compared against.
const neighbourhoodHalf = 5

// valid applies the final checks every accepted candidate must pass.
func (d *Detector) valid(s *Scene, c Candidate) bool {
	dot := c.Dot()
	r := dot.Radius

	if r < d.params.ValidMinRadius || r > d.params.ValidMaxRadius {
		return false
	}
	if dot.X < r || dot.Y < r || dot.X+r >= s.Width || dot.Y+r >= s.Height {
		return false
	}

	mean, _ := imaging.WindowStats(s.Gray, dot.X, dot.Y, neighbourhoodHalf)
	if float64(imaging.GrayAt(s.Gray, dot.X, dot.Y)) > mean {
		return false
	}

	expected := math.Pi * float64(r*r)
	filled := float64(imaging.ForegroundCount(s.Pre.Binary, dot.X, dot.Y, r))
	return math.Abs(filled-expected)/expected <= d.params.OverlapTolerance
}
