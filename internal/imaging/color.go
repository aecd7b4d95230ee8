package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MeanColor returns the average RGB color of the given pixels.
//
// Points are 0-based offsets from the image's top-left corner. Points outside
// the image are skipped. An empty point set (or a nil image) yields black.
func MeanColor(img image.Image, pts []image.Point) colorful.Color {
	if img == nil || len(pts) == 0 {
		return colorful.Color{}
	}
	bounds := img.Bounds()
	var r, g, b float64
	n := 0
	for _, p := range pts {
		pt := p.Add(bounds.Min)
		if !pt.In(bounds) {
			continue
		}
		cr, cg, cb, _ := img.At(pt.X, pt.Y).RGBA()
		r += float64(cr>>8) / 255.0
		g += float64(cg>>8) / 255.0
		b += float64(cb>>8) / 255.0
		n++
	}
	if n == 0 {
		return colorful.Color{}
	}
	return colorful.Color{R: r / float64(n), G: g / float64(n), B: b / float64(n)}
}

// ColorDistance returns the CIE Lab distance between two colors. Identical
// colors are 0 apart; black and white are about 1.0 apart.
func ColorDistance(a, b colorful.Color) float64 {
	return a.DistanceLab(b)
}

// Hex formats c as "#rrggbb".
func Hex(c colorful.Color) string {
	return c.Clamped().Hex()
}
