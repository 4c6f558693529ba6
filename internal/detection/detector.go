package detection

import (
	"image"
	"sort"

	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// Strategy is one stage of the detection cascade.
type Strategy interface {
	// Name identifies the strategy in traces.
	Name() string

	// Engage reports whether the strategy should run given the number of
	// candidates accepted so far.
	Engage(accepted int) bool

	// Detect proposes candidates for the scene.
	Detect(s *Scene, accepted []Candidate) Result
}

// Result is the output of one strategy run.
type Result struct {
	Candidates []Candidate

	// Confidence is the strategy's aggregate quality signal (0.0 to 1.0).
	Confidence float64

	// Replace makes Candidates the new accepted set instead of merging
	// them into it.
	Replace bool
}

// StrategyRun records one step of the cascade.
type StrategyRun struct {
	Name       string  `json:"name"`
	Ran        bool    `json:"ran"`
	Candidates int     `json:"candidates"`
	Accepted   int     `json:"accepted"`
	Confidence float64 `json:"confidence"`
}

// Trace describes how a detection was reached.
type Trace struct {
	Runs      []StrategyRun `json:"runs"`
	Proposed  int           `json:"proposed"`
	Rejected  int           `json:"rejected"`
	Capped    bool          `json:"capped"`
	DotsFound int           `json:"dots_found"`
}

// Detector runs the strategy cascade and validates its output.
// A Detector holds no per-image state and may be shared between goroutines.
type Detector struct {
	params     Params
	strategies []Strategy
}

// New creates a detector with the standard five-strategy cascade.
func New(p Params) *Detector {
	return NewWithStrategies(p,
		&houghStrategy{p: p},
		&contourStrategy{p: p},
		&blobStrategy{p: p},
		&templateStrategy{p: p},
		&clusterStrategy{p: p},
	)
}

// NewWithStrategies creates a detector running the given strategies in order.
func NewWithStrategies(p Params, strategies ...Strategy) *Detector {
	return &Detector{params: p, strategies: strategies}
}

// Detect finds the dots of img. A nil or zero-size raster yields no dots.
func (d *Detector) Detect(img image.Image) ([]kolam.Dot, *Trace) {
	return d.DetectScene(NewScene(img))
}

// DetectScene finds the dots of an already preprocessed scene.
func (d *Detector) DetectScene(s *Scene) ([]kolam.Dot, *Trace) {
	trace := &Trace{Runs: make([]StrategyRun, 0, len(d.strategies))}
	if s == nil {
		return []kolam.Dot{}, trace
	}

	var accepted []Candidate
	for _, st := range d.strategies {
		run := StrategyRun{Name: st.Name()}
		if !st.Engage(len(accepted)) {
			run.Accepted = len(accepted)
			trace.Runs = append(trace.Runs, run)
			continue
		}

		res := st.Detect(s, accepted)
		run.Ran = true
		run.Candidates = len(res.Candidates)
		run.Confidence = res.Confidence
		if res.Replace {
			accepted = res.Candidates
		} else {
			accepted = Merge(accepted, res.Candidates)
		}
		run.Accepted = len(accepted)
		trace.Runs = append(trace.Runs, run)
	}

	trace.Proposed = len(accepted)
	valid := make([]Candidate, 0, len(accepted))
	for _, c := range accepted {
		if d.valid(s, c) {
			valid = append(valid, c)
		}
	}
	trace.Rejected = len(accepted) - len(valid)

	if d.params.MaxDots > 0 && len(valid) > d.params.MaxDots {
		sortByScore(valid)
		valid = valid[:d.params.MaxDots]
		trace.Capped = true
	}

	dots := make([]kolam.Dot, 0, len(valid))
	for _, c := range valid {
		dots = append(dots, c.Dot())
	}
	sort.SliceStable(dots, func(i, j int) bool {
		if dots[i].Y != dots[j].Y {
			return dots[i].Y < dots[j].Y
		}
		return dots[i].X < dots[j].X
	})
	trace.DotsFound = len(dots)
	return dots, trace
}
