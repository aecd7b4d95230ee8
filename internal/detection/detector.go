package detection

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/bibnumber/internal/imaging"
	"github.com/ironsheep/bibnumber/internal/ocr"
)

// EdgeProvider computes the edge mask and gradient fields of an image.
// imaging.Canny is the standard implementation.
type EdgeProvider interface {
	EdgeField(img image.Image) (*imaging.EdgeField, error)
}

// Analysis holds every intermediate result of one detection run.
type Analysis struct {
	Width      int
	Height     int
	SWT        *StrokeWidthMap
	Rays       []Ray
	Components []Component
	Chains     []Chain
}

// Analyze runs the stroke width pipeline on a precomputed edge field, from
// ray casting to chain building. img supplies component colors and may be
// nil.
func Analyze(field *imaging.EdgeField, img image.Image, params Params) *Analysis {
	swt, rays := StrokeWidthTransform(field, params)
	MedianFilter(swt, rays)
	raw := ConnectedComponents(swt)
	components := FilterComponents(swt, raw, img, params)
	chains := MakeChains(components, params)

	slog.Debug("analysis complete",
		"edges", field.EdgeCount(),
		"rays", len(rays),
		"swt_pixels", swt.SetCount(),
		"raw_components", len(raw),
		"components", len(components),
		"chains", len(chains))

	return &Analysis{
		Width:      field.Width,
		Height:     field.Height,
		SWT:        swt,
		Rays:       rays,
		Components: components,
		Chains:     chains,
	}
}

// Line is a candidate text line together with its OCR outcome.
type Line struct {
	Candidate

	// RawText is the unfiltered recognizer output.
	RawText string `json:"raw_text"`

	// Text is the accepted digit string; empty when the line was rejected.
	Text string `json:"text,omitempty"`

	// Accepted reports whether Text holds a valid reading.
	Accepted bool `json:"accepted"`
}

// Result is the outcome of Detector.Detect.
type Result struct {
	// Texts lists the accepted readings in the order the lines were accepted.
	Texts []string

	// Lines lists every candidate that produced an OCR patch.
	Lines []Line

	Analysis *Analysis
}

// Option configures a Detector.
type Option func(*Detector)

// WithEdgeProvider replaces the default Canny edge provider.
func WithEdgeProvider(p EdgeProvider) Option {
	return func(d *Detector) { d.edges = p }
}

// WithRecognizer sets the OCR engine. Without one, Detect finds candidate
// lines but reads no text.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(d *Detector) { d.recognizer = r }
}

// WithPatchOptions overrides the OCR patch preparation settings.
func WithPatchOptions(opts imaging.PatchOptions) Option {
	return func(d *Detector) { d.patch = opts }
}

// Detector finds bib numbers in images.
//
// A Detector keeps no state between calls. It is safe for concurrent use
// when its recognizer is; ocr.Tesseract is not, so batch workers each own a
// Detector.
type Detector struct {
	params     Params
	edges      EdgeProvider
	recognizer ocr.Recognizer
	patch      imaging.PatchOptions
}

// NewDetector validates params and returns a Detector.
func NewDetector(params Params, opts ...Option) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	d := &Detector{
		params: params,
		edges:  imaging.Canny{Options: imaging.DefaultEdgeOptions()},
		patch:  imaging.DefaultPatchOptions(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Params returns the detection parameters.
func (d *Detector) Params() Params { return d.params }

// Detect finds and reads the bib numbers in img.
//
// An undecodable or empty image fails the whole run. Lines whose OCR text is
// rejected simply contribute nothing; a recognizer error aborts the run.
func (d *Detector) Detect(img image.Image) (*Result, error) {
	if err := imaging.ValidateImage(img); err != nil {
		return nil, err
	}
	field, err := d.edges.EdgeField(img)
	if err != nil {
		return nil, fmt.Errorf("edge detection failed: %w", err)
	}

	analysis := Analyze(field, img, d.params)
	result := &Result{Analysis: analysis}

	candidates := AcceptChains(analysis.Chains, analysis.Components, analysis.Width, d.params)
	if len(candidates) == 0 || d.recognizer == nil {
		for _, c := range candidates {
			result.Lines = append(result.Lines, Line{Candidate: c})
		}
		return result, nil
	}

	gray := imaging.ToGray(img)
	for _, cand := range candidates {
		patch, ok := BuildPatch(gray, cand, analysis.Components, d.params.DarkOnLight, d.patch)
		if !ok {
			slog.Debug("chain rejected", "reason", "empty patch", "bounds", cand.Bounds)
			continue
		}
		raw, err := d.recognizer.Recognize(patch)
		if err != nil {
			return nil, fmt.Errorf("text recognition failed: %w", err)
		}

		line := Line{Candidate: cand, RawText: raw}
		line.Text, line.Accepted = ocr.AcceptText(raw, len(cand.Chain.Components))
		if line.Accepted {
			result.Texts = append(result.Texts, line.Text)
		}
		slog.Debug("chain read",
			"bounds", cand.Bounds,
			"angle", cand.Angle,
			"raw", raw,
			"accepted", line.Accepted)
		result.Lines = append(result.Lines, line)
	}
	return result, nil
}
