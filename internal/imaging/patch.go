package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// PatchOptions controls how a rotated text patch is prepared for OCR.
type PatchOptions struct {
	// Border is the black margin, in pixels, added around the cropped patch.
	Border int

	// Upscale is the resize factor applied after cropping.
	Upscale float64

	// ErodeFraction sizes the erosion radius relative to the upscaled height.
	ErodeFraction float64
}

// DefaultPatchOptions returns the settings used for bib number patches.
func DefaultPatchOptions() PatchOptions {
	return PatchOptions{Border: 3, Upscale: 3.0, ErodeFraction: 0.05}
}

// ToGray converts img to an 8-bit grayscale image with ITU-R BT.601 weights.
// The result always has its origin at (0, 0).
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	rgba := effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114)
	return grayFromRGBA(rgba)
}

// grayFromRGBA copies the red channel of an already-gray RGBA image.
func grayFromRGBA(rgba *image.RGBA) *image.Gray {
	b := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// OtsuThreshold returns the Otsu threshold of gray inside r. Pixels strictly
// greater than the returned level belong to the bright class.
func OtsuThreshold(gray *image.Gray, r image.Rectangle) uint8 {
	r = r.Intersect(gray.Rect)
	var hist [256]float64
	n := 0.0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
			n++
		}
	}
	if n == 0 {
		return 0
	}

	mu := 0.0
	for i, h := range hist {
		mu += float64(i) * h
	}
	mu /= n

	const eps = 1.1920929e-07
	var q1, mu1, maxSigma float64
	level := 0
	for i := 0; i < 256; i++ {
		p := hist[i] / n
		mu1 *= q1
		q1 += p
		q2 := 1 - q1
		if math.Min(q1, q2) < eps || math.Max(q1, q2) > 1-eps {
			continue
		}
		mu1 = (mu1 + float64(i)*p) / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			level = i
		}
	}
	return uint8(level)
}

// BinarizeRegion thresholds the pixels of src inside r with Otsu's level and
// writes the result into the same region of dst. With invert set, dark pixels
// become white (255) and bright pixels black; otherwise bright pixels become white.
func BinarizeRegion(dst, src *image.Gray, r image.Rectangle, invert bool) {
	r = r.Intersect(src.Rect).Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	level := OtsuThreshold(src, r)

	var bin *image.Gray
	if level == 255 {
		bin = image.NewGray(r)
	} else {
		bin = segment.Threshold(src.SubImage(r), level+1)
	}
	if invert {
		for i := range bin.Pix {
			bin.Pix[i] = 255 - bin.Pix[i]
		}
	}
	draw.Draw(dst, r, bin, bin.Rect.Min, draw.Src)
}

// RotateAbout rotates img counter-clockwise by degrees around center, keeping
// the original bounds. Uncovered pixels are black.
func RotateAbout(img *image.Gray, center image.Point, degrees float64) *image.Gray {
	// bild rotates clockwise for positive angles.
	rotated := transform.Rotate(img, -degrees, &transform.RotationOptions{Pivot: &center})
	return grayFromRGBA(rotated)
}

// RotatePoint maps (x, y) through the same rotation RotateAbout applies.
func RotatePoint(x, y, cx, cy, degrees float64) (float64, float64) {
	s, c := math.Sincos(degrees * math.Pi / 180)
	dx, dy := x-cx, y-cy
	return cx + c*dx + s*dy, cy - s*dx + c*dy
}

// FinishPatch crops roi out of a rotated binary image, pads it with a black
// border, upscales it and erodes it so that touching strokes separate.
func FinishPatch(rotated *image.Gray, roi image.Rectangle, opts PatchOptions) *image.Gray {
	roi = roi.Intersect(rotated.Rect)
	canvas := imaging.New(roi.Dx()+2*opts.Border, roi.Dy()+2*opts.Border, color.Black)
	canvas = imaging.Paste(canvas, imaging.Crop(rotated, roi), image.Pt(opts.Border, opts.Border))

	var patch image.Image = canvas
	if opts.Upscale > 0 && opts.Upscale != 1 {
		w := int(math.Round(float64(canvas.Bounds().Dx()) * opts.Upscale))
		h := int(math.Round(float64(canvas.Bounds().Dy()) * opts.Upscale))
		patch = imaging.Resize(canvas, w, h, imaging.Linear)
	}

	gray := ToGray(patch)
	if radius := int(opts.ErodeFraction * float64(gray.Rect.Dy())); radius > 0 {
		gray = ErodeEllipse(gray, radius)
	}
	return gray
}

// ellipseSpans returns, for each row offset -r..r of a (2r+1)-square
// elliptical structuring element, the half-width of that row.
func ellipseSpans(r int) []int {
	spans := make([]int, 2*r+1)
	for dy := -r; dy <= r; dy++ {
		spans[dy+r] = int(math.Round(math.Sqrt(float64(r*r - dy*dy))))
	}
	return spans
}

// ErodeEllipse replaces every pixel of gray with the minimum over an
// elliptical neighbourhood of radius r. Pixels outside the image are ignored.
func ErodeEllipse(gray *image.Gray, r int) *image.Gray {
	b := gray.Rect
	out := image.NewGray(b)
	spans := ellipseSpans(r)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m := uint8(255)
		rows:
			for dy := -r; dy <= r; dy++ {
				yy := y + dy
				if yy < b.Min.Y || yy >= b.Max.Y {
					continue
				}
				row := gray.Pix[(yy-b.Min.Y)*gray.Stride:]
				x0, x1 := max(x-spans[dy+r], b.Min.X), min(x+spans[dy+r], b.Max.X-1)
				for xx := x0; xx <= x1; xx++ {
					if v := row[xx-b.Min.X]; v < m {
						m = v
						if m == 0 {
							break rows
						}
					}
				}
			}
			out.Pix[(y-b.Min.Y)*out.Stride+(x-b.Min.X)] = m
		}
	}
	return out
}
