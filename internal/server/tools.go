package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func coordProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Kolam Analysis
		{
			Name: "kolam_analyze",
			Description: "Extract the dots and lines of a kolam drawing and analyse the resulting graph: " +
				"closed loops, connectivity, Eulerian path, mirror and rotational symmetry, grid pattern and regional style. " +
				"Optionally restrict the analysis to a rectangular region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1":   coordProperty("Optional region left edge X coordinate (0-based)"),
					"y1":   coordProperty("Optional region top edge Y coordinate (0-based)"),
					"x2":   coordProperty("Optional region right edge X coordinate (exclusive)"),
					"y2":   coordProperty("Optional region bottom edge Y coordinate (exclusive)"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "kolam_analyze_batch",
			Description: "Analyse several kolam images in parallel. Each path gets its own result or error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the image files",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "kolam_detect_dots",
			Description: "Detect the dots (pulli) of a kolam drawing and report which detection strategies ran.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "kolam_preprocess",
			Description: "Return the preprocessed binary map (basic or advanced) or the Canny edge map of an image as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"basic", "advanced", "edges"},
						"description": "Which map to return. Default advanced",
						"default":     "advanced",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "kolam_overlay",
			Description: "Draw the detected lines and dots over the image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"dot_color": map[string]interface{}{
						"type":        "string",
						"description": "Dot outline color as hex (e.g., #FF0000). Default #FF0000",
						"default":     "#FF0000",
					},
					"line_color": map[string]interface{}{
						"type":        "string",
						"description": "Line color as hex. Default #00C000",
						"default":     "#00C000",
					},
					"show_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each dot with its index. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "kolam_grid_fit",
			Description: "Classify the dot layout: exact grid pattern, best-fit rows and columns with confidence, and radial ring structure.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
