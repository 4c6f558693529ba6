package builder

// Params tunes graph construction.
type Params struct {
	// SampleLimit caps the number of foreground pixels that vote.
	SampleLimit int `yaml:"sample_limit"`

	// MinVotes is the number of pixel votes a traced edge needs.
	MinVotes int `yaml:"min_votes"`

	// CorridorWidth is the maximum perpendicular distance of a voting pixel
	// from the segment between its two nearest dots.
	CorridorWidth float64 `yaml:"corridor_width"`

	// MinDistance and MaxDistance bound a plausible proximity connection.
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`

	// UseLayout enables lattice and ring connections.
	UseLayout bool `yaml:"use_layout"`

	// HubFactor marks nodes with degree above HubFactor times the mean
	// degree as hubs.
	HubFactor float64 `yaml:"hub_factor"`

	// HubKeep is the share of a hub's connections kept, closest first, and
	// HubMinKeep the minimum number kept.
	HubKeep    float64 `yaml:"hub_keep"`
	HubMinKeep int     `yaml:"hub_min_keep"`
}

// DefaultParams returns the standard graph construction settings.
func DefaultParams() Params {
	return Params{
		SampleLimit:   20000,
		MinVotes:      2,
		CorridorWidth: 10,
		MinDistance:   5,
		MaxDistance:   200,
		UseLayout:     true,
		HubFactor:     2,
		HubKeep:       0.6,
		HubMinKeep:    2,
	}
}

// proximityFactor scales the mean pairwise distance into the proximity
// threshold. Denser layouts get a tighter threshold.
func proximityFactor(n int) float64 {
	switch {
	case n <= 10:
		return 1.0
	case n <= 20:
		return 0.75
	default:
		return 0.5
	}
}
