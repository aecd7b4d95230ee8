package detection

import (
	"image"
	"math"
)

// Bounds is an axis-aligned bounding box in pixel coordinates. Both corners
// are inclusive: (X1, Y1) is the top-left member pixel and (X2, Y2) the
// bottom-right member pixel.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (inclusive)
	Y2 int `json:"y2"` // Bottom edge (inclusive)
}

// Width returns the number of pixel columns covered.
func (b Bounds) Width() int { return b.X2 - b.X1 + 1 }

// Height returns the number of pixel rows covered.
func (b Bounds) Height() int { return b.Y2 - b.Y1 + 1 }

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p PointF) bool {
	return float64(b.X1) <= p.X && float64(b.X2) >= p.X &&
		float64(b.Y1) <= p.Y && float64(b.Y2) >= p.Y
}

// Union returns the smallest box enclosing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Rect converts b into the half-open image.Rectangle covering the same pixels.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2+1, b.Y2+1)
}

// Center returns the midpoint of the corner pixels.
func (b Bounds) Center() PointF {
	return PointF{X: float64(b.X1+b.X2) / 2, Y: float64(b.Y1+b.Y2) / 2}
}

// boundsOf returns the tight bounding box of a non-empty point set.
func boundsOf(pts []image.Point) Bounds {
	b := Bounds{X1: pts[0].X, Y1: pts[0].Y, X2: pts[0].X, Y2: pts[0].Y}
	for _, p := range pts[1:] {
		b.X1 = min(b.X1, p.X)
		b.Y1 = min(b.Y1, p.Y)
		b.X2 = max(b.X2, p.X)
		b.Y2 = max(b.Y2, p.Y)
	}
	return b
}

// PointF is a sub-pixel position or a direction vector.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - o.
func (p PointF) Sub(o PointF) PointF { return PointF{X: p.X - o.X, Y: p.Y - o.Y} }

// Neg returns -p.
func (p PointF) Neg() PointF { return PointF{X: -p.X, Y: -p.Y} }

// Dot returns the dot product of p and o.
func (p PointF) Dot(o PointF) float64 { return p.X*o.X + p.Y*o.Y }

// Norm2 returns the squared length of p.
func (p PointF) Norm2() float64 { return p.X*p.X + p.Y*p.Y }

// normalize returns p scaled to unit length. ok is false for a zero vector,
// in which case the zero vector is returned.
func (p PointF) normalize() (unit PointF, ok bool) {
	mag := math.Sqrt(p.Norm2())
	if mag == 0 || math.IsNaN(mag) || math.IsInf(mag, 0) {
		return PointF{}, false
	}
	return PointF{X: p.X / mag, Y: p.Y / mag}, true
}

// angleBetween returns acos(a·b) in radians with the dot product clamped to
// [-1, 1] so rounding never produces NaN for unit vectors.
func angleBetween(a, b PointF) float64 {
	d := a.Dot(b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}
