package pipeline

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/ironsheep/kolam-tools-mcp/internal/analysis"
	"github.com/ironsheep/kolam-tools-mcp/internal/builder"
	"github.com/ironsheep/kolam-tools-mcp/internal/config"
	"github.com/ironsheep/kolam-tools-mcp/internal/detection"
	"github.com/ironsheep/kolam-tools-mcp/internal/kolam"
)

// Pipeline turns rasters into analysed patterns.
type Pipeline struct {
	detector *detection.Detector
	builder  *builder.Builder
	analyze  func(*kolam.Pattern) (kolam.AnalysisResult, error)
	debug    bool
}

// Result is a pattern together with the diagnostics of the run that
// produced it.
type Result struct {
	Pattern *kolam.Pattern
	Trace   *detection.Trace
	Build   builder.Stats
	Elapsed time.Duration
}

// New creates a pipeline from cfg. A nil cfg uses the defaults.
func New(cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{
		detector: detection.New(cfg.Detection),
		builder:  builder.New(cfg.Graph),
		analyze:  analysis.Analyze,
		debug:    cfg.Debug(),
	}
}

// Run extracts and analyses the kolam in img. It never fails: an empty
// raster yields an empty pattern with default analysis, and degraded paths
// are recorded in Pattern.Warnings.
func (p *Pipeline) Run(img image.Image) *kolam.Pattern {
	return p.Process(img).Pattern
}

// Process is Run with stage diagnostics.
func (p *Pipeline) Process(img image.Image) *Result {
	start := time.Now()
	res := &Result{Trace: &detection.Trace{Runs: []detection.StrategyRun{}}}

	scene := detection.NewScene(img)
	if scene == nil {
		res.Pattern = kolam.NewPattern([]kolam.Dot{})
		res.Pattern.Warn(kolam.ErrInvalidInput.Error())
		res.Elapsed = time.Since(start)
		return res
	}

	dots, trace := p.detector.DetectScene(scene)
	res.Trace = trace
	if p.debug {
		log.Printf("Detection: %d dots in %v (proposed %d, rejected %d, capped %t)",
			len(dots), time.Since(start), trace.Proposed, trace.Rejected, trace.Capped)
		for _, run := range trace.Runs {
			if run.Ran {
				log.Printf("  %s: %d candidates, %d accepted, confidence %.2f",
					run.Name, run.Candidates, run.Accepted, run.Confidence)
			}
		}
	}

	buildStart := time.Now()
	pattern, stats := p.builder.Build(dots, scene.Pre.Binary)
	res.Pattern, res.Build = pattern, stats
	if len(dots) < 2 {
		pattern.Warn(fmt.Errorf("%w: %d dots", kolam.ErrDegenerateDetection, len(dots)).Error())
	}
	if p.debug {
		log.Printf("Graph: %d edges in %v (traced %d, proximity %d, layout %d %s, pruned %d)",
			pattern.Graph.Size(), time.Since(buildStart), stats.Traced, stats.Proximity,
			stats.Layout, stats.LayoutKind, stats.Pruned)
	}

	analysed, err := p.analyze(pattern)
	if err != nil {
		log.Printf("Pattern analysis: %v", err)
		pattern.Warn(err.Error())
	}
	pattern.Analysis = analysed

	res.Elapsed = time.Since(start)
	if p.debug {
		log.Printf("Pipeline: completed in %v", res.Elapsed)
	}
	return res
}
