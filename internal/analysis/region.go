package analysis

import (
	"strings"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// Region labels, in decision order.
const (
	RegionTamilNadu     = "Tamil Nadu (simple daily kolam style)"
	RegionKarnataka     = "Karnataka (decorative symmetrical style)"
	RegionAndhraPradesh = "Andhra Pradesh (geometric grid-based style)"
	RegionKerala        = "Kerala (complex nature-inspired style)"
	RegionUndetermined  = "Region undetermined - requires cultural context for accurate classification"
)

// Classify maps dot count, line count, symmetry score, loop count and grid
// pattern to a regional style label. The first matching rule wins. The label
// is illustrative only.
func Classify(r kolam.AnalysisResult) string {
	grid := strings.ToLower(r.GridPattern)

	switch {
	case r.DotCount <= 15 && r.SymmetryScore < 0.5 && strings.Contains(grid, "irregular"):
		return RegionTamilNadu
	case r.SymmetryScore >= 0.5 && r.LoopCount > 2:
		return RegionKarnataka
	case strings.Contains(grid, "grid") && r.SymmetryScore >= 0.3:
		return RegionAndhraPradesh
	case r.DotCount > 20 || (r.LineCount > 30 && r.LoopCount > 3):
		return RegionKerala
	default:
		return RegionUndetermined
	}
}
