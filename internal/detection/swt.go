package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/bibnumber/internal/imaging"
)

// Unset marks a stroke width map pixel that no ray has reached.
const Unset = -1.0

// StrokeWidthMap holds one stroke width estimate per pixel, row-major.
// Values are either Unset or the thinnest accepted ray length covering the
// pixel.
type StrokeWidthMap struct {
	Width  int
	Height int
	Values []float64
}

// NewStrokeWidthMap returns a map with every pixel Unset.
func NewStrokeWidthMap(width, height int) *StrokeWidthMap {
	values := make([]float64, width*height)
	for i := range values {
		values[i] = Unset
	}
	return &StrokeWidthMap{Width: width, Height: height, Values: values}
}

// At returns the value at (x, y).
func (m *StrokeWidthMap) At(x, y int) float64 {
	return m.Values[y*m.Width+x]
}

// Set stores v at (x, y).
func (m *StrokeWidthMap) Set(x, y int, v float64) {
	m.Values[y*m.Width+x] = v
}

// IsSet reports whether (x, y) holds a stroke width.
func (m *StrokeWidthMap) IsSet(x, y int) bool {
	return m.Values[y*m.Width+x] > 0
}

// SetCount returns the number of pixels holding a stroke width.
func (m *StrokeWidthMap) SetCount() int {
	n := 0
	for _, v := range m.Values {
		if v > 0 {
			n++
		}
	}
	return n
}

// Ray is an accepted stroke crossing from edge pixel P to the facing edge
// pixel Q. Points lists every pixel entered along the way in walk order,
// starting with P and ending with Q.
type Ray struct {
	P      image.Point
	Q      image.Point
	Points []image.Point
	Length float64
}

// StrokeWidthTransform casts a ray from every edge pixel along its gradient
// and records the width of each stroke crossed.
//
// The gradient is normalized and, for dark-on-light text, negated so that the
// ray walks into the stroke. The walk advances RayStep pixels at a time from
// the pixel center and records every newly entered pixel. It ends when it
// leaves the image or enters another edge pixel q. The ray is accepted only if
// the gradient at q points back against the walk (angle below 90 degrees
// between the walk direction and the reversed, polarity-corrected gradient at
// q) and |q-p| does not exceed MaxStrokeLength. Every pixel on an accepted ray
// takes the minimum of its current value and the ray length.
//
// Edge pixels with a zero gradient cast no ray, and a ray ending on an edge
// pixel with a zero gradient is rejected.
func StrokeWidthTransform(field *imaging.EdgeField, params Params) (*StrokeWidthMap, []Ray) {
	swt := NewStrokeWidthMap(field.Width, field.Height)
	var rays []Ray

	for row := 0; row < field.Height; row++ {
		for col := 0; col < field.Width; col++ {
			if !field.IsEdge(col, row) {
				continue
			}
			dir, ok := strokeDirection(field, col, row, params.DarkOnLight)
			if !ok {
				continue
			}
			ray, ok := castRay(field, image.Pt(col, row), dir, params)
			if !ok {
				continue
			}
			for _, pt := range ray.Points {
				i := pt.Y*swt.Width + pt.X
				if swt.Values[i] < 0 {
					swt.Values[i] = ray.Length
				} else {
					swt.Values[i] = math.Min(swt.Values[i], ray.Length)
				}
			}
			rays = append(rays, ray)
		}
	}
	return swt, rays
}

// strokeDirection returns the polarity-corrected unit gradient at (x, y).
func strokeDirection(field *imaging.EdgeField, x, y int, darkOnLight bool) (PointF, bool) {
	gx, gy := field.Gradient(x, y)
	dir, ok := PointF{X: gx, Y: gy}.normalize()
	if !ok {
		return PointF{}, false
	}
	if darkOnLight {
		dir = dir.Neg()
	}
	return dir, true
}

// castRay walks from p along dir until it leaves the image or reaches an
// edge pixel, and reports whether the walk forms an acceptable stroke.
func castRay(field *imaging.EdgeField, p image.Point, dir PointF, params Params) (Ray, bool) {
	points := []image.Point{p}
	curX := float64(p.X) + 0.5
	curY := float64(p.Y) + 0.5
	curPix := p

	for {
		curX += dir.X * RayStep
		curY += dir.Y * RayStep
		next := image.Pt(int(math.Floor(curX)), int(math.Floor(curY)))
		if next == curPix {
			continue
		}
		curPix = next
		if next.X < 0 || next.X >= field.Width || next.Y < 0 || next.Y >= field.Height {
			return Ray{}, false
		}
		points = append(points, next)

		if !field.IsEdge(next.X, next.Y) {
			continue
		}

		// Any edge pixel ends the walk; only a facing one forms a stroke.
		qDir, ok := strokeDirection(field, next.X, next.Y, params.DarkOnLight)
		if !ok || angleBetween(dir, qDir.Neg()) >= math.Pi/2 {
			return Ray{}, false
		}
		dx := float64(next.X - p.X)
		dy := float64(next.Y - p.Y)
		length := math.Sqrt(dx*dx + dy*dy)
		if length > params.MaxStrokeLength {
			return Ray{}, false
		}
		return Ray{P: p, Q: next, Points: points, Length: length}, true
	}
}

// MedianFilter caps every pixel of each ray at the median of the ray's
// current values, processing rays in discovery order.
func MedianFilter(swt *StrokeWidthMap, rays []Ray) {
	var values []float64
	for _, ray := range rays {
		values = values[:0]
		for _, pt := range ray.Points {
			values = append(values, swt.At(pt.X, pt.Y))
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		median := sorted[len(sorted)/2]
		for i, pt := range ray.Points {
			swt.Set(pt.X, pt.Y, math.Min(values[i], median))
		}
	}
}
