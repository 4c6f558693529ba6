package kolam

import "errors"

var (
	// ErrInvalidInput marks a nil or zero-size raster.
	ErrInvalidInput = errors.New("invalid input raster")

	// ErrDegenerateDetection marks a detection with fewer than two dots, for
	// which graph metrics are skipped.
	ErrDegenerateDetection = errors.New("degenerate detection")

	// ErrAnalysisFailure marks a failed graph computation. Partial results
	// are still returned.
	ErrAnalysisFailure = errors.New("graph analysis failed")
)
