package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/bibnumber/internal/batch"
	"github.com/ironsheep/bibnumber/internal/detection"
	"github.com/ironsheep/bibnumber/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "bib_detect").
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
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Detection
	case "bib_detect":
		return s.handleBibDetect(args)
	case "bib_components":
		return s.handleBibComponents(args)

	// Inspection
	case "bib_render":
		return s.handleBibRender(args)
	case "bib_crop":
		return s.handleBibCrop(args)
	case "bib_grid":
		return s.handleBibGrid(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// paramOverrides holds the optional per-call detection settings shared by
// the bib_* tools. Unset fields keep the configured value.
type paramOverrides struct {
	DarkOnLight            *bool    `json:"dark_on_light"`
	MaxStrokeLength        *float64 `json:"max_stroke_length"`
	MinCharacterHeight     *int     `json:"min_character_height"`
	MaxAngle               *float64 `json:"max_angle"`
	MaxImgWidthToTextRatio *float64 `json:"max_img_width_to_text_ratio"`
	TopBorder              *int     `json:"top_border"`
	BottomBorder           *int     `json:"bottom_border"`
	MaxColorDistance       *float64 `json:"max_color_distance"`
}

func (o paramOverrides) apply(p detection.Params) (detection.Params, error) {
	if o.DarkOnLight != nil {
		p.DarkOnLight = *o.DarkOnLight
	}
	if o.MaxStrokeLength != nil {
		p.MaxStrokeLength = *o.MaxStrokeLength
	}
	if o.MinCharacterHeight != nil {
		p.MinCharacterHeight = *o.MinCharacterHeight
	}
	if o.MaxAngle != nil {
		p.MaxAngle = *o.MaxAngle
	}
	if o.MaxImgWidthToTextRatio != nil {
		p.MaxImgWidthToTextRatio = *o.MaxImgWidthToTextRatio
	}
	if o.TopBorder != nil {
		p.TopBorder = *o.TopBorder
	}
	if o.BottomBorder != nil {
		p.BottomBorder = *o.BottomBorder
	}
	if o.MaxColorDistance != nil {
		p.MaxColorDistance = *o.MaxColorDistance
	}
	return p, p.Validate()
}

type bibArgs struct {
	Path string `json:"path"`
	paramOverrides
}

// detect loads the image named by a and runs the detector with the
// overridden parameters.
func (s *Server) detect(a bibArgs) (image.Image, *detection.Result, error) {
	params, err := a.apply(s.cfg.Detection)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}

	opts := []detection.Option{detection.WithEdgeProvider(imaging.Canny{Options: s.cfg.Edges})}
	if s.recognizer != nil {
		opts = append(opts, detection.WithRecognizer(s.recognizer))
	}
	det, err := detection.NewDetector(params, opts...)
	if err != nil {
		return nil, nil, err
	}
	res, err := det.Detect(img)
	if err != nil {
		return nil, nil, err
	}
	return img, res, nil
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

// === Detection Handlers ===

// DetectResult is the bib_detect result.
type DetectResult struct {
	Numbers []int            `json:"numbers"`
	Texts   []string         `json:"texts"`
	Lines   []detection.Line `json:"lines"`

	// OCR reports whether a recognizer read the lines.
	OCR bool `json:"ocr"`
}

func (s *Server) handleBibDetect(args json.RawMessage) (interface{}, error) {
	var a bibArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, res, err := s.detect(a)
	if err != nil {
		return nil, err
	}
	return &DetectResult{
		Numbers: batch.Numbers(res.Texts),
		Texts:   res.Texts,
		Lines:   res.Lines,
		OCR:     s.recognizer != nil,
	}, nil
}

// ComponentSummary describes one filtered component.
type ComponentSummary struct {
	detection.Component
	Size  int    `json:"size"`
	Color string `json:"color"`
}

// ComponentsResult is the bib_components result.
type ComponentsResult struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Rays       int                `json:"rays"`
	Components []ComponentSummary `json:"components"`
	Chains     []detection.Chain  `json:"chains"`
}

func (s *Server) handleBibComponents(args json.RawMessage) (interface{}, error) {
	var a bibArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	params, err := a.apply(s.cfg.Detection)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	field, err := imaging.ComputeEdgeField(img, s.cfg.Edges)
	if err != nil {
		return nil, err
	}

	an := detection.Analyze(field, img, params)
	out := &ComponentsResult{
		Width:      an.Width,
		Height:     an.Height,
		Rays:       len(an.Rays),
		Components: make([]ComponentSummary, len(an.Components)),
		Chains:     an.Chains,
	}
	for i, c := range an.Components {
		out.Components[i] = ComponentSummary{Component: c, Size: len(c.Points), Color: imaging.Hex(c.Color)}
	}
	return out, nil
}

// === Inspection Handlers ===

type bibRenderArgs struct {
	bibArgs
	Stage string `json:"stage"`
}

func (s *Server) handleBibRender(args json.RawMessage) (interface{}, error) {
	var a bibRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Stage == "" {
		a.Stage = "lines"
	}
	switch a.Stage {
	case "swt", "components", "chains", "lines":
	default:
		return nil, fmt.Errorf("invalid stage: %s (valid: swt, components, chains, lines)", a.Stage)
	}

	img, res, err := s.detect(a.bibArgs)
	if err != nil {
		return nil, err
	}
	an := res.Analysis

	var out image.Image
	switch a.Stage {
	case "swt":
		out = detection.RenderStrokeWidth(an.SWT)
	case "components":
		out = detection.RenderComponents(img, an.Components)
	case "chains":
		out = detection.RenderChains(img, an.Chains, an.Components)
	default:
		out = detection.RenderLines(img, res.Lines)
	}
	return imaging.Encode(out)
}

type bibCropArgs struct {
	bibArgs
	Line   int     `json:"line"`
	Margin int     `json:"margin"`
	Scale  float64 `json:"scale"`
}

// CropResult is the bib_crop result.
type CropResult struct {
	*imaging.EncodedImage
	Line detection.Line `json:"line"`
}

func (s *Server) handleBibCrop(args json.RawMessage) (interface{}, error) {
	a := bibCropArgs{Margin: 10, Scale: 2.0}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Margin < 0 {
		return nil, fmt.Errorf("margin must not be negative, got %d", a.Margin)
	}

	img, res, err := s.detect(a.bibArgs)
	if err != nil {
		return nil, err
	}
	if a.Line < 0 || a.Line >= len(res.Lines) {
		return nil, fmt.Errorf("line %d out of range: %d lines detected", a.Line, len(res.Lines))
	}
	line := res.Lines[a.Line]

	r := imaging.PadRect(line.Bounds.Rect(), a.Margin, img.Bounds())
	crop, err := imaging.CropRegion(img, r, a.Scale)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.Encode(crop)
	if err != nil {
		return nil, err
	}
	return &CropResult{EncodedImage: enc, Line: line}, nil
}

type bibGridArgs struct {
	Path            string `json:"path"`
	GridSpacing     int    `json:"grid_spacing"`
	ShowCoordinates *bool  `json:"show_coordinates"`
	GridColor       string `json:"grid_color"`
	TopBorder       *int   `json:"top_border"`
	BottomBorder    *int   `json:"bottom_border"`
}

func (s *Server) handleBibGrid(args json.RawMessage) (interface{}, error) {
	var a bibGridArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := imaging.GridOptions{
		Spacing:         a.GridSpacing,
		ShowCoordinates: true,
		Color:           a.GridColor,
		TopBorder:       s.cfg.Detection.TopBorder,
		BottomBorder:    s.cfg.Detection.BottomBorder,
	}
	if opts.Spacing == 0 {
		opts.Spacing = 50
	}
	if opts.Color == "" {
		opts.Color = "#FF0000"
	}
	if a.ShowCoordinates != nil {
		opts.ShowCoordinates = *a.ShowCoordinates
	}
	if a.TopBorder != nil {
		opts.TopBorder = *a.TopBorder
	}
	if a.BottomBorder != nil {
		opts.BottomBorder = *a.BottomBorder
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := imaging.GridOverlay(img, opts)
	if err != nil {
		return nil, err
	}
	return imaging.Encode(out)
}
