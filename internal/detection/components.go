package detection

import (
	"image"
	"log/slog"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/bibnumber/internal/imaging"
)

// Component is a connected region of consistent stroke width, a candidate
// character. Its attributes are computed once by FilterComponents.
type Component struct {
	// Index identifies the component within one detection run.
	Index int `json:"index"`

	// Points lists the member pixels in row-major order.
	Points []image.Point `json:"-"`

	// Bounds is the tight axis-aligned box around Points.
	Bounds Bounds `json:"bounds"`

	// Center is the midpoint of Bounds.
	Center PointF `json:"center"`

	// Stroke width statistics over the member pixels.
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Median   float64 `json:"median"`

	// OrientedWidth and OrientedHeight are the extents of the minimal-area
	// box found by the rotation search, along the rotated X and Y axes.
	OrientedWidth  float64 `json:"oriented_width"`
	OrientedHeight float64 `json:"oriented_height"`

	// Color is the mean color of the member pixels in the source image.
	Color colorful.Color `json:"-"`
}

// orientedSteps is the number of rotation samples per half turn.
const orientedSteps = 36

// strokeStats returns mean, variance and median of the stroke widths of pts.
func strokeStats(swt *StrokeWidthMap, pts []image.Point) (mean, variance, median float64) {
	values := make([]float64, len(pts))
	for i, p := range pts {
		v := swt.At(p.X, p.Y)
		values[i] = v
		mean += v
	}
	n := float64(len(values))
	mean /= n
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= n
	sort.Float64s(values)
	median = values[len(values)/2]
	return mean, variance, median
}

// orientedBox searches rotations k*pi/36 in (0, pi/2) for the box of smallest
// area around pts. It starts from the axis-aligned box and returns the
// extents along the rotated X (width) and Y (height) axes.
func orientedBox(pts []image.Point, b Bounds) (width, height float64) {
	width = float64(b.Width())
	height = float64(b.Height())
	area := width * height

	increment := math.Pi / orientedSteps
	for k := 1; float64(k)*increment < math.Pi/2; k++ {
		s, c := math.Sincos(float64(k) * increment)
		xmin, ymin := math.Inf(1), math.Inf(1)
		xmax, ymax := math.Inf(-1), math.Inf(-1)
		for _, p := range pts {
			x := float64(p.X)*c - float64(p.Y)*s
			y := float64(p.X)*s + float64(p.Y)*c
			xmin = math.Min(xmin, x)
			xmax = math.Max(xmax, x)
			ymin = math.Min(ymin, y)
			ymax = math.Max(ymax, y)
		}
		w := xmax - xmin + 1
		h := ymax - ymin + 1
		if w*h < area {
			area = w * h
			width = w
			height = h
		}
	}
	return width, height
}

// FilterComponents computes statistics for every raw component and keeps the
// plausible characters.
//
// A component is rejected when its axis-aligned height exceeds
// MaxComponentHeight, when it reaches into the configured top or bottom
// border, or when its oriented aspect ratio falls outside MaxAspectRatio.
// A second pass, run once over the survivors of the first, drops every
// component whose box holds the centers of two or more other survivors.
// Survivors are indexed from 0 in their original order.
//
// img supplies the mean component colors and may be nil.
func FilterComponents(swt *StrokeWidthMap, raw [][]image.Point, img image.Image, params Params) []Component {
	var candidates []Component
	for _, pts := range raw {
		if len(pts) == 0 {
			continue
		}
		b := boundsOf(pts)
		if b.Height() > MaxComponentHeight {
			continue
		}
		if b.Y1 < params.TopBorder || b.Y2 > swt.Height-params.BottomBorder {
			continue
		}
		width, height := orientedBox(pts, b)
		if !ratioWithin(width/height, MaxAspectRatio) {
			continue
		}
		mean, variance, median := strokeStats(swt, pts)
		candidates = append(candidates, Component{
			Points:         pts,
			Bounds:         b,
			Center:         b.Center(),
			Mean:           mean,
			Variance:       variance,
			Median:         median,
			OrientedWidth:  width,
			OrientedHeight: height,
		})
	}

	var kept []Component
	for i := range candidates {
		contained := 0
		for j := range candidates {
			if i != j && candidates[i].Bounds.Contains(candidates[j].Center) {
				contained++
			}
		}
		if contained >= 2 {
			continue
		}
		c := candidates[i]
		c.Index = len(kept)
		c.Color = imaging.MeanColor(img, c.Points)
		kept = append(kept, c)
	}

	slog.Debug("filtered components",
		"raw", len(raw), "first_pass", len(candidates), "kept", len(kept))
	for _, c := range kept {
		slog.Debug("component",
			"index", c.Index,
			"dim", [2]float64{c.OrientedWidth, c.OrientedHeight},
			"median", c.Median,
			"bounds", c.Bounds)
	}
	return kept
}
