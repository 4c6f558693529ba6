package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// Candidate is a dot hypothesis produced by one strategy.
type Candidate struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`

	// Score is the strategy's own confidence in this candidate (0.0 to 1.0).
	Score float64 `json:"score"`

	// Source names the strategy that proposed the candidate.
	Source string `json:"source"`
}

func (c Candidate) dist(o Candidate) float64 {
	return math.Hypot(c.X-o.X, c.Y-o.Y)
}

// Dot rounds the candidate to integer pixel coordinates.
func (c Candidate) Dot() kolam.Dot {
	return kolam.Dot{
		X:      int(math.Round(c.X)),
		Y:      int(math.Round(c.Y)),
		Radius: int(math.Round(c.Radius)),
	}
}

// Duplicate reports whether two candidates describe the same dot: their
// centres are closer than a radius-scaled threshold and their radii differ by
// less than half the larger radius.
func Duplicate(a, b Candidate) bool {
	threshold := math.Max(4, 0.8*(a.Radius+b.Radius))
	if a.dist(b) >= threshold {
		return false
	}
	return math.Abs(a.Radius-b.Radius) < 0.5*math.Max(a.Radius, b.Radius)
}

// Merge appends each incoming candidate that does not duplicate one already
// present. Earlier candidates win.
func Merge(accepted, incoming []Candidate) []Candidate {
	out := append(make([]Candidate, 0, len(accepted)+len(incoming)), accepted...)
	for _, c := range incoming {
		dup := false
		for _, a := range out {
			if Duplicate(a, c) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// sortByScore orders candidates by descending score, then top-to-bottom and
// left-to-right for determinism.
func sortByScore(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		if cands[i].Y != cands[j].Y {
			return cands[i].Y < cands[j].Y
		}
		return cands[i].X < cands[j].X
	})
}

func meanScore(cands []Candidate) float64 {
	if len(cands) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cands {
		sum += c.Score
	}
	return math.Min(1, sum/float64(len(cands)))
}
