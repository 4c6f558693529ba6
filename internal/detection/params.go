package detection

// Params tunes the dot detection cascade.
type Params struct {
	// MinRadius and MaxRadius bound the circular-voting radius search.
	MinRadius int `yaml:"min_radius"`
	MaxRadius int `yaml:"max_radius"`

	// HoughThreshold is the minimum fraction of a circumference that must
	// vote for a centre.
	HoughThreshold float64 `yaml:"hough_threshold"`

	// MinDistance is the minimum spacing between circular-voting peaks.
	MinDistance float64 `yaml:"min_distance"`

	// MinContrast is the minimum intensity difference between the ring
	// around a voted dot and its core.
	MinContrast float64 `yaml:"min_contrast"`

	// HoughMaxSide caps the longer image side the circular vote runs at.
	// Zero disables the cap.
	HoughMaxSide int `yaml:"hough_max_side"`

	ContourMinArea int     `yaml:"contour_min_area"`
	ContourMaxArea int     `yaml:"contour_max_area"`
	MinCircularity float64 `yaml:"min_circularity"`
	MaxAspect      float64 `yaml:"max_aspect"`

	// BlobScales are the resize factors the blob strategy runs at.
	BlobScales []float64 `yaml:"blob_scales"`

	// TemplateRadii are the filled-disc template radii.
	TemplateRadii     []int   `yaml:"template_radii"`
	TemplateThreshold float64 `yaml:"template_threshold"`

	// TemplateMaxSide caps the longer image side the template strategy
	// correlates at; larger images are downscaled first.
	TemplateMaxSide int `yaml:"template_max_side"`

	// ClusterEps is the neighbourhood radius for density clustering.
	ClusterEps float64 `yaml:"cluster_eps"`

	// Escalation thresholds on the accepted candidate count.
	ContourBelow  int `yaml:"contour_below"`
	BlobBelow     int `yaml:"blob_below"`
	TemplateBelow int `yaml:"template_below"`
	ClusterAbove  int `yaml:"cluster_above"`

	// Final validation.
	ValidMinRadius   int     `yaml:"valid_min_radius"`
	ValidMaxRadius   int     `yaml:"valid_max_radius"`
	OverlapTolerance float64 `yaml:"overlap_tolerance"`
	MaxDots          int     `yaml:"max_dots"`
}

// DefaultParams returns the standard tuning for hand-drawn and photographed
// kolams.
func DefaultParams() Params {
	return Params{
		MinRadius:         3,
		MaxRadius:         15,
		HoughThreshold:    0.45,
		MinDistance:       15,
		MinContrast:       30,
		HoughMaxSide:      1024,
		ContourMinArea:    12,
		ContourMaxArea:    2000,
		MinCircularity:    0.5,
		MaxAspect:         2.0,
		BlobScales:        []float64{0.8, 1.0, 1.2},
		TemplateRadii:     []int{3, 5, 8, 12},
		TemplateThreshold: 0.7,
		TemplateMaxSide:   512,
		ClusterEps:        6,
		ContourBelow:      5,
		BlobBelow:         5,
		TemplateBelow:     3,
		ClusterAbove:      10,
		ValidMinRadius:    2,
		ValidMaxRadius:    25,
		OverlapTolerance:  0.5,
		MaxDots:           200,
	}
}
