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

// detectionProperties returns the schema of the optional detection
// overrides accepted by the bib_* tools, together with path.
func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"dark_on_light": map[string]interface{}{
			"type":        "boolean",
			"description": "Dark digits on a light bib. Set false for light digits on a dark bib",
		},
		"max_stroke_length": map[string]interface{}{
			"type":        "number",
			"description": "Longest stroke width in pixels",
		},
		"min_character_height": map[string]interface{}{
			"type":        "integer",
			"description": "Shortest digit height in pixels",
		},
		"max_angle": map[string]interface{}{
			"type":        "number",
			"description": "Largest tilt of a number line in degrees",
		},
		"max_img_width_to_text_ratio": map[string]interface{}{
			"type":        "number",
			"description": "A line must be at least image width divided by this value wide",
		},
		"top_border": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels at the top of the image in which nothing is detected",
		},
		"bottom_border": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels at the bottom of the image in which nothing is detected",
		},
		"max_color_distance": map[string]interface{}{
			"type":        "number",
			"description": "Largest CIE Lab distance between the colors of neighbouring digits. 0 disables the check",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	render := detectionProperties()
	render["stage"] = map[string]interface{}{
		"type":        "string",
		"description": "Pipeline stage to render",
		"enum":        []string{"swt", "components", "chains", "lines"},
		"default":     "lines",
	}

	crop := detectionProperties()
	crop["line"] = map[string]interface{}{
		"type":        "integer",
		"description": "Index of the detected line, as listed by bib_detect",
		"default":     0,
	}
	crop["margin"] = map[string]interface{}{
		"type":        "integer",
		"description": "Pixels added around the line box",
		"default":     10,
	}
	crop["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Scale factor applied to the crop",
		"default":     2.0,
	}

	return []Tool{
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

		// Detection
		{
			Name:        "bib_detect",
			Description: "Detect and read the bib numbers in a photo. Returns the numbers and every candidate line with its bounding box, tilt and OCR text.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectionProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "bib_components",
			Description: "Run the stroke width analysis without OCR and list the letter candidates and the chains built from them.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectionProperties(),
				"required":   []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "bib_render",
			Description: "Render one stage of the detection pipeline as a base64-encoded PNG: the stroke width map, the components, the chains or the detected lines.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": render,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "bib_crop",
			Description: "Crop one detected line out of the photo and return it zoomed as a base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": crop,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "bib_grid",
			Description: "Overlay a coordinate grid on the photo and shade the top and bottom border bands excluded from detection. Use this to choose border settings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between grid lines",
						"default":     50,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label grid lines with pixel coordinates",
						"default":     true,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color as hex",
						"default":     "#FF0000",
					},
					"top_border": map[string]interface{}{
						"type":        "integer",
						"description": "Top band to shade. Defaults to the configured top border",
					},
					"bottom_border": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom band to shade. Defaults to the configured bottom border",
					},
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
