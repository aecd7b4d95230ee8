package detection

import (
	"image"
	"log/slog"
	"math"

	"github.com/ironsheep/bibnumber/internal/imaging"
)

// Candidate is a chain that passed the geometric checks and is ready to be
// rectified for OCR.
type Candidate struct {
	Chain Chain `json:"chain"`

	// Bounds is the union of the member component boxes.
	Bounds Bounds `json:"bounds"`

	// Angle is the chain slope in degrees, within [-90, 90]. Positive
	// angles descend to the right in image coordinates.
	Angle float64 `json:"angle"`
}

// chainAngle returns the slope of dir in degrees after flipping it to point
// right.
func chainAngle(dir PointF) float64 {
	if dir.X < 0 {
		dir = dir.Neg()
	}
	return math.Atan2(dir.Y, dir.X) * 180 / math.Pi
}

// AcceptChains keeps the chains that look like a line of characters: wide
// enough relative to the image, with no member shorter than
// MinCharacterHeight, and tilted by no more than MaxAngle.
func AcceptChains(chains []Chain, components []Component, imageWidth int, params Params) []Candidate {
	var out []Candidate
	minSpan := float64(imageWidth) / params.MaxImgWidthToTextRatio
	for _, ch := range chains {
		b := components[ch.Components[0]].Bounds
		minHeight := math.Inf(1)
		for _, idx := range ch.Components {
			c := components[idx]
			b = b.Union(c.Bounds)
			minHeight = math.Min(minHeight, c.OrientedHeight)
		}

		if float64(b.X2-b.X1) < minSpan {
			slog.Debug("chain rejected", "reason", "narrow", "bounds", b)
			continue
		}
		if minHeight < float64(params.MinCharacterHeight) {
			slog.Debug("chain rejected", "reason", "short", "min_height", minHeight)
			continue
		}
		angle := chainAngle(ch.Direction)
		if math.Abs(angle) > params.MaxAngle {
			slog.Debug("chain rejected", "reason", "tilted", "angle", angle)
			continue
		}
		out = append(out, Candidate{Chain: ch, Bounds: b, Angle: angle})
	}
	return out
}

// BuildPatch renders the OCR input for one candidate.
//
// Each member component box is binarized on its own with Otsu's threshold so
// that strokes come out white on black. The binary image is rotated about the
// candidate center to make the chain horizontal, cropped to the rotated member
// boxes and handed to imaging.FinishPatch. ok is false when the rotated boxes
// fall outside the image.
func BuildPatch(gray *image.Gray, cand Candidate, components []Component, darkOnLight bool, opts imaging.PatchOptions) (patch *image.Gray, ok bool) {
	canvas := image.NewGray(gray.Rect)
	for _, idx := range cand.Chain.Components {
		imaging.BinarizeRegion(canvas, gray, components[idx].Bounds.Rect(), darkOnLight)
	}

	c := cand.Bounds.Center()
	center := image.Pt(int(math.Round(c.X)), int(math.Round(c.Y)))
	rotated := imaging.RotateAbout(canvas, center, cand.Angle)

	roi, ok := rotatedROI(cand, components, center, gray.Rect.Dx(), gray.Rect.Dy())
	if !ok {
		return nil, false
	}
	return imaging.FinishPatch(rotated, roi, opts), true
}

// rotatedROI returns the box enclosing every member box corner after
// rotation, clamped to a width x height image.
func rotatedROI(cand Candidate, components []Component, center image.Point, width, height int) (image.Rectangle, bool) {
	minX, minY := width-1, height-1
	maxX, maxY := 0, 0
	cx, cy := float64(center.X), float64(center.Y)
	for _, idx := range cand.Chain.Components {
		b := components[idx].Bounds
		corners := [4][2]int{{b.X1, b.Y1}, {b.X2, b.Y1}, {b.X1, b.Y2}, {b.X2, b.Y2}}
		for _, corner := range corners {
			fx, fy := imaging.RotatePoint(float64(corner[0]), float64(corner[1]), cx, cy, cand.Angle)
			x := clampInt(int(math.Round(fx)), 0, width-1)
			y := clampInt(int(math.Round(fy)), 0, height-1)
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}
	if maxX <= minX || maxY <= minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
