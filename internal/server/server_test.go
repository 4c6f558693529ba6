package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := New(nil)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.pipeline == nil || s.cfg == nil {
		t.Fatal("New() did not initialize the pipeline")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
		wantParams bool
	}{
		{"string id", `{"jsonrpc":"2.0","id":"a-1","method":"tools/list"}`, "a-1", "tools/list", false},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping", false},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize", false},
		{
			"with params",
			`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"kolam_analyze","arguments":{"path":"/k.png"}}}`,
			float64(7), "tools/call", true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
			if (len(req.Params) > 0) != tt.wantParams {
				t.Errorf("Params present: got %v, want %v", len(req.Params) > 0, tt.wantParams)
			}
		})
	}
}

func TestHandleRequest_Routing(t *testing.T) {
	s := New(nil)

	tests := []struct {
		method    string
		id        interface{}
		wantNil   bool
		wantError int
	}{
		{method: "initialize", id: 1},
		{method: "ping", id: "ping-1"},
		{method: "tools/list", id: 2},
		{method: "notifications/initialized", wantNil: true},
		{method: "resources/list", id: 3, wantError: -32601},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: tt.id, Method: tt.method})
			if tt.wantNil {
				if resp != nil {
					t.Errorf("%s should not be answered, got %+v", tt.method, resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("handleRequest returned nil")
			}
			if resp.ID != tt.id || resp.JSONRPC != "2.0" {
				t.Errorf("envelope: got id %v jsonrpc %q", resp.ID, resp.JSONRPC)
			}
			switch {
			case tt.wantError != 0 && resp.Error == nil:
				t.Fatalf("expected error %d", tt.wantError)
			case tt.wantError != 0 && resp.Error.Code != tt.wantError:
				t.Errorf("Error code: got %d, want %d", resp.Error.Code, tt.wantError)
			case tt.wantError == 0 && resp.Error != nil:
				t.Errorf("unexpected error: %+v", resp.Error)
			}
		})
	}
}

func TestHandleInitialize(t *testing.T) {
	s := New(nil)
	resp := s.handleInitialize(&MCPRequest{JSONRPC: "2.0", ID: "init-1"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != "kolam-tools-mcp" {
		t.Errorf("serverInfo.name: got %v", serverInfo["name"])
	}
	if serverInfo["version"] != Version {
		t.Errorf("serverInfo.version: got %v, want %s", serverInfo["version"], Version)
	}
}

// session feeds lines to Serve and returns the decoded responses.
func session(t *testing.T, s *Server, lines ...string) []MCPResponse {
	t.Helper()

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(strings.Join(lines, "\n")), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var resps []MCPResponse
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp MCPResponse
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		resps = append(resps, resp)
	}
	return resps
}

func TestServe_SkipsUnparseableLines(t *testing.T) {
	resps := session(t, New(nil),
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)

	if len(resps) != 2 {
		t.Fatalf("got %d responses, want 2", len(resps))
	}
	for i, resp := range resps {
		if resp.Error != nil {
			t.Errorf("unexpected error response: %+v", resp.Error)
		}
		if id, _ := resp.ID.(float64); id != float64(i+1) {
			t.Errorf("response %d id = %v", i, resp.ID)
		}
	}
}

func TestServe_AnalyzeSession(t *testing.T) {
	path := createKolamImageFile(t)
	call := fmt.Sprintf(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"kolam_analyze","arguments":{"path":%q}}}`, path)
	missing := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"kolam_analyze","arguments":{"path":"/no/such/kolam.png"}}}`

	resps := session(t, New(nil),
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		call,
		missing,
	)
	if len(resps) != 4 {
		t.Fatalf("got %d responses, want 4", len(resps))
	}

	var listed struct {
		Tools []Tool `json:"tools"`
	}
	raw, _ := json.Marshal(resps[1].Result)
	if err := json.Unmarshal(raw, &listed); err != nil || len(listed.Tools) != 8 {
		t.Errorf("tools/list: got %d tools (err %v)", len(listed.Tools), err)
	}

	var content struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	raw, _ = json.Marshal(resps[2].Result)
	if err := json.Unmarshal(raw, &content); err != nil || len(content.Content) != 1 {
		t.Fatalf("tools/call content: %s", raw)
	}
	var result KolamAnalysis
	if err := json.Unmarshal([]byte(content.Content[0].Text), &result); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if result.Analysis.DotCount != 4 || result.Analysis.ClosedLoops != 1 {
		t.Errorf("analysis: got %+v", result.Analysis)
	}

	if resps[3].Error == nil || resps[3].Error.Code != -32000 {
		t.Errorf("missing file: got %+v, want tool execution error", resps[3].Error)
	}
}
