package detection

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is wrapped by every error returned from Params.Validate.
var ErrInvalidParams = errors.New("invalid detection parameters")

// Fixed thresholds of the detection pipeline.
const (
	// RayStep is the sub-pixel step used when walking a ray.
	RayStep = 0.05

	// MaxSWTRatio bounds the stroke width ratio of two adjacent pixels that
	// may belong to the same component.
	MaxSWTRatio = 3.0

	// MaxComponentHeight is the tallest axis-aligned component kept.
	MaxComponentHeight = 300

	// MaxAspectRatio bounds the oriented length/width ratio of a component.
	MaxAspectRatio = 2.0

	// MaxMedianRatio bounds the stroke width median ratio of a component pair.
	MaxMedianRatio = 3.0

	// MaxDimRatio bounds the oriented height and width ratios of a pair.
	MaxDimRatio = 2.0

	// MaxDistRatio bounds squared center distance over the squared larger
	// short side of a pair.
	MaxDistRatio = 1.6

	// MinChainComponents is the smallest number of distinct components in an
	// accepted chain.
	MinChainComponents = 3
)

// Params holds the per-run detection configuration. It is read-only during a
// run.
type Params struct {
	// DarkOnLight selects dark text on a light background. When false the
	// text is assumed lighter than its background.
	DarkOnLight bool `toml:"dark_on_light" json:"dark_on_light"`

	// MaxStrokeLength rejects rays longer than this many pixels.
	MaxStrokeLength float64 `toml:"max_stroke_length" json:"max_stroke_length"`

	// MinCharacterHeight rejects chains whose shortest component is lower
	// than this many pixels.
	MinCharacterHeight int `toml:"min_character_height" json:"min_character_height"`

	// MaxAngle rejects chains tilted more than this many degrees.
	MaxAngle float64 `toml:"max_angle" json:"max_angle"`

	// MaxImgWidthToTextRatio rejects chains narrower than
	// imageWidth/MaxImgWidthToTextRatio.
	MaxImgWidthToTextRatio float64 `toml:"max_img_width_to_text_ratio" json:"max_img_width_to_text_ratio"`

	// TopBorder and BottomBorder are margins, in pixels, in which no
	// component may lie.
	TopBorder    int `toml:"top_border" json:"top_border"`
	BottomBorder int `toml:"bottom_border" json:"bottom_border"`

	// MaxColorDistance, when positive, additionally requires the mean colors
	// of a component pair to be within this CIE Lab distance. Zero disables
	// the check.
	MaxColorDistance float64 `toml:"max_color_distance" json:"max_color_distance"`
}

// DefaultParams returns parameters tuned for race bib photos.
func DefaultParams() Params {
	return Params{
		DarkOnLight:            true,
		MaxStrokeLength:        15,
		MinCharacterHeight:     11,
		MaxAngle:               30,
		MaxImgWidthToTextRatio: 50,
		TopBorder:              0,
		BottomBorder:           0,
		MaxColorDistance:       0,
	}
}

// Validate checks that every parameter is usable.
func (p Params) Validate() error {
	var errs []error
	if p.MaxStrokeLength <= 0 {
		errs = append(errs, fmt.Errorf("max_stroke_length must be positive, got %v", p.MaxStrokeLength))
	}
	if p.MinCharacterHeight < 0 {
		errs = append(errs, fmt.Errorf("min_character_height must not be negative, got %d", p.MinCharacterHeight))
	}
	if p.MaxAngle < 0 || p.MaxAngle > 90 {
		errs = append(errs, fmt.Errorf("max_angle must be within [0, 90], got %v", p.MaxAngle))
	}
	if p.MaxImgWidthToTextRatio <= 0 {
		errs = append(errs, fmt.Errorf("max_img_width_to_text_ratio must be positive, got %v", p.MaxImgWidthToTextRatio))
	}
	if p.TopBorder < 0 || p.BottomBorder < 0 {
		errs = append(errs, fmt.Errorf("borders must not be negative, got top=%d bottom=%d", p.TopBorder, p.BottomBorder))
	}
	if p.MaxColorDistance < 0 {
		errs = append(errs, fmt.Errorf("max_color_distance must not be negative, got %v", p.MaxColorDistance))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
}

// ratioWithin reports whether 1/max < ratio < max.
func ratioWithin(ratio, max float64) bool {
	return ratio < max && ratio > 1/max
}
