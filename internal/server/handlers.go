package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/kolam-tools-mcp/internal/analysis"
	"github.com/ironsheep/kolam-tools-mcp/internal/detection"
	"github.com/ironsheep/kolam-tools-mcp/internal/imaging"
	"github.com/ironsheep/kolam-tools-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "kolam_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Runs the pipeline or one of its stages
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Kolam Analysis
	case "kolam_analyze":
		return s.handleKolamAnalyze(args)
	case "kolam_analyze_batch":
		return s.handleKolamAnalyzeBatch(args)
	case "kolam_detect_dots":
		return s.handleKolamDetectDots(args)
	case "kolam_preprocess":
		return s.handleKolamPreprocess(args)
	case "kolam_overlay":
		return s.handleKolamOverlay(args)
	case "kolam_grid_fit":
		return s.handleKolamGridFit(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response. An empty data string is
// omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	mcpErr := &MCPError{Code: code, Message: message}
	if data != "" {
		mcpErr.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: mcpErr}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// loadImage loads a whole image as a zero-origin raster.
func (s *Server) loadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.LoadRegion(path, nil)
	if err != nil {
		return nil, err
	}
	if imaging.IsEmpty(img) {
		return nil, fmt.Errorf("image %s has no pixels", path)
	}
	return img, nil
}

// === Kolam Analysis Handlers ===

type kolamAnalyzeArgs struct {
	Path string `json:"path"`
	X1   *int   `json:"x1,omitempty"`
	Y1   *int   `json:"y1,omitempty"`
	X2   *int   `json:"x2,omitempty"`
	Y2   *int   `json:"y2,omitempty"`
}

// region returns the requested crop, nil for the whole image, or an error
// when only some corners are given.
func (a kolamAnalyzeArgs) region() (*imaging.Region, error) {
	given := 0
	for _, v := range []*int{a.X1, a.Y1, a.X2, a.Y2} {
		if v != nil {
			given++
		}
	}
	switch given {
	case 0:
		return nil, nil
	case 4:
		return &imaging.Region{X1: *a.X1, Y1: *a.Y1, X2: *a.X2, Y2: *a.Y2}, nil
	default:
		return nil, errors.New("region requires all of x1, y1, x2, y2")
	}
}

// KolamAnalysis is the result of the kolam_analyze tool.
type KolamAnalysis struct {
	AnalysisID string                `json:"analysis_id"`
	Path       string                `json:"path"`
	Analysis   pipeline.Report       `json:"analysis"`
	Dots       []pipeline.DotRecord  `json:"dots"`
	Lines      []pipeline.LineRecord `json:"lines"`
	Warnings   []string              `json:"warnings,omitempty"`
	ElapsedMS  int64                 `json:"elapsed_ms"`
}

func (s *Server) analyze(path string, region *imaging.Region) (*KolamAnalysis, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.LoadRegion(path, region)
	if err != nil {
		return nil, err
	}

	res := s.pipeline.Process(img)
	p := res.Pattern
	return &KolamAnalysis{
		AnalysisID: uuid.NewString(),
		Path:       path,
		Analysis:   pipeline.NewReport(p.Analysis),
		Dots:       pipeline.DotRecords(p.Dots),
		Lines:      pipeline.LineRecords(p.Lines),
		Warnings:   p.Warnings,
		ElapsedMS:  res.Elapsed.Milliseconds(),
	}, nil
}

func (s *Server) handleKolamAnalyze(args json.RawMessage) (interface{}, error) {
	var a kolamAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	region, err := a.region()
	if err != nil {
		return nil, err
	}
	return s.analyze(a.Path, region)
}

type kolamAnalyzeBatchArgs struct {
	Paths []string `json:"paths"`
}

// BatchItem is one entry of a kolam_analyze_batch result. Exactly one of
// Result and Error is set.
type BatchItem struct {
	Path   string         `json:"path"`
	Result *KolamAnalysis `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// BatchResult is the result of the kolam_analyze_batch tool.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	ElapsedMS int64       `json:"elapsed_ms"`
}

func (s *Server) handleKolamAnalyzeBatch(args json.RawMessage) (interface{}, error) {
	var a kolamAnalyzeBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths is required")
	}

	start := time.Now()
	items := make([]BatchItem, len(a.Paths))

	var g errgroup.Group
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, path := range a.Paths {
		i, path := i, path
		g.Go(func() error {
			items[i].Path = path
			// Images first loaded by the batch are not kept.
			if !s.cache.Cached(path) {
				defer s.cache.Evict(path)
			}
			res, err := s.analyze(path, nil)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Result = res
			return nil
		})
	}
	// Per-path failures are reported inline.
	_ = g.Wait()

	out := &BatchResult{Items: items, ElapsedMS: time.Since(start).Milliseconds()}
	for _, it := range items {
		if it.Error != "" {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	if s.cfg.Debug() {
		log.Printf("Batch: %d paths, %d failed, %d images cached", len(a.Paths), out.Failed, s.cache.Len())
	}
	return out, nil
}

// DetectDotsResult is the result of the kolam_detect_dots tool.
type DetectDotsResult struct {
	Count int                  `json:"count"`
	Dots  []pipeline.DotRecord `json:"dots"`
	Trace *detection.Trace     `json:"trace"`
}

func (s *Server) handleKolamDetectDots(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	dots, trace := detection.New(s.cfg.Detection).Detect(img)
	return &DetectDotsResult{
		Count: len(dots),
		Dots:  pipeline.DotRecords(dots),
		Trace: trace,
	}, nil
}

type kolamPreprocessArgs struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
}

// PreprocessResult is the result of the kolam_preprocess tool.
type PreprocessResult struct {
	Mode             string `json:"mode"`
	ForegroundPixels int    `json:"foreground_pixels"`
	*imaging.EncodedImage
}

func (s *Server) handleKolamPreprocess(args json.RawMessage) (interface{}, error) {
	var a kolamPreprocessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Mode == "" {
		a.Mode = "advanced"
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	var m *image.Gray
	switch a.Mode {
	case "basic":
		m = imaging.Preprocess(img)
	case "advanced":
		m = imaging.PreprocessAdvanced(img).Binary
	case "edges":
		m = imaging.PreprocessAdvanced(img).Edges.Edges
	default:
		return nil, fmt.Errorf("invalid mode %q: use basic, advanced or edges", a.Mode)
	}

	enc, err := imaging.EncodePNG(m)
	if err != nil {
		return nil, err
	}
	on := 0
	for _, v := range m.Pix {
		if v != 0 {
			on++
		}
	}
	return &PreprocessResult{Mode: a.Mode, ForegroundPixels: on, EncodedImage: enc}, nil
}

type kolamOverlayArgs struct {
	Path       string `json:"path"`
	DotColor   string `json:"dot_color"`
	LineColor  string `json:"line_color"`
	ShowLabels bool   `json:"show_labels"`
}

// OverlayResult is the result of the kolam_overlay tool.
type OverlayResult struct {
	DotCount  int `json:"dot_count"`
	LineCount int `json:"line_count"`
	*imaging.EncodedImage
}

func (s *Server) handleKolamOverlay(args json.RawMessage) (interface{}, error) {
	var a kolamOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := imaging.DefaultOverlayOptions()
	if a.DotColor != "" {
		opts.DotColor = a.DotColor
	}
	if a.LineColor != "" {
		opts.LineColor = a.LineColor
	}
	opts.ShowLabels = a.ShowLabels

	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	p := s.pipeline.Run(img)
	enc, err := imaging.Overlay(img, p.Dots, p.Lines, opts)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{DotCount: len(p.Dots), LineCount: len(p.Lines), EncodedImage: enc}, nil
}

// GridFitResult is the result of the kolam_grid_fit tool.
type GridFitResult struct {
	DotCount int `json:"dot_count"`
	analysis.LayoutSummary
}

func (s *Server) handleKolamGridFit(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	dots, _ := detection.New(s.cfg.Detection).Detect(img)
	return &GridFitResult{DotCount: len(dots), LayoutSummary: analysis.DescribeLayout(dots)}, nil
}
