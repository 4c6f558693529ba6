package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ironsheep/kolam-tools-mcp/internal/config"
	"github.com/ironsheep/kolam-tools-mcp/internal/imaging"
	"github.com/ironsheep/kolam-tools-mcp/internal/pipeline"
)

// Version is reported in the initialize handshake. It is set by main.
var Version = "0.1.0"

// JSON-RPC error codes used by the server.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// maxRequestBytes bounds a single request line.
const maxRequestBytes = 1024 * 1024

// Server answers MCP requests with the kolam analysis tools.
// Decoded images are cached by path for the life of the server.
type Server struct {
	cache    *imaging.ImageCache
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	methods  map[string]methodHandler
}

// methodHandler answers one JSON-RPC method. A nil response means the
// request was a notification.
type methodHandler func(req *MCPRequest) *MCPResponse

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server. A nil cfg uses the defaults.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cache:    imaging.NewImageCache(),
		cfg:      cfg,
		pipeline: pipeline.New(cfg),
	}
	s.methods = map[string]methodHandler{
		"initialize":                s.handleInitialize,
		"notifications/initialized": func(*MCPRequest) *MCPResponse { return nil },
		"tools/list":                s.handleToolsList,
		"tools/call":                s.handleToolsCall,
		"ping":                      s.handlePing,
	}
	return s
}

// Run serves requests from stdin and writes responses to stdout.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve handles one JSON-RPC request per line of in until EOF. Lines that
// do not parse are logged and skipped.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// handleRequest routes a request through the method table.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	start := time.Now()

	handler, ok := s.methods[req.Method]
	if !ok {
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
	resp := handler(req)

	if s.cfg.Debug() {
		failed := resp != nil && resp.Error != nil
		log.Printf("Request %s (id %v) in %v, error=%t", req.Method, req.ID, time.Since(start), failed)
	}
	return resp
}

func (s *Server) handlePing(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{},
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "kolam-tools-mcp",
				"version": Version,
			},
		},
	}
}
