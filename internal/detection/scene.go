package detection

import (
	"image"

	"github.com/ironsheep/kolam-tools-mcp/internal/imaging"
)

// Scene is the preprocessed view of one raster shared by every strategy.
type Scene struct {
	Width  int
	Height int

	// Gray is the raw intensity map.
	Gray *image.Gray

	// Pre holds the equalized intensity, edge map and cleaned binary map.
	Pre *imaging.Preprocessed
}

// NewScene preprocesses img. It returns nil for a nil or zero-size raster.
func NewScene(img image.Image) *Scene {
	pre := imaging.PreprocessAdvanced(img)
	if pre == nil {
		return nil
	}
	return &Scene{
		Width:  pre.Gray.Rect.Dx(),
		Height: pre.Gray.Rect.Dy(),
		Gray:   pre.Gray,
		Pre:    pre,
	}
}

func (s *Scene) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width && y < s.Height
}
