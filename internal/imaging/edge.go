package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"
)

// Default Canny thresholds, expressed on the L1 Sobel magnitude of an 8-bit
// grayscale image.
const (
	DefaultCannyLow  = 175.0
	DefaultCannyHigh = 320.0
)

// EdgeOptions configures the edge/gradient computation.
type EdgeOptions struct {
	// Low is the hysteresis low threshold. Pixels whose suppressed gradient
	// magnitude exceeds Low are kept only when connected to a strong pixel.
	Low float64 `toml:"canny_low" json:"canny_low"`

	// High is the hysteresis high threshold. Pixels above High are always edges.
	High float64 `toml:"canny_high" json:"canny_high"`
}

// DefaultEdgeOptions returns the thresholds used for bib detection.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{Low: DefaultCannyLow, High: DefaultCannyHigh}
}

// EdgeField holds a binary edge mask and the two gradient components for an
// image. All slices are row-major with index y*Width+x.
type EdgeField struct {
	Width  int
	Height int

	// Edges marks the pixels retained by Canny edge detection.
	Edges []bool

	// GradX and GradY are the smoothed horizontal and vertical gradients of
	// the normalized (0..1) grayscale image.
	GradX []float64
	GradY []float64
}

// NewEdgeField allocates an empty field of the given size.
func NewEdgeField(width, height int) *EdgeField {
	n := width * height
	return &EdgeField{
		Width:  width,
		Height: height,
		Edges:  make([]bool, n),
		GradX:  make([]float64, n),
		GradY:  make([]float64, n),
	}
}

// Index returns the row-major index of (x, y).
func (f *EdgeField) Index(x, y int) int {
	return y*f.Width + x
}

// IsEdge reports whether (x, y) is an edge pixel.
func (f *EdgeField) IsEdge(x, y int) bool {
	return f.Edges[y*f.Width+x]
}

// Gradient returns the gradient vector at (x, y).
func (f *EdgeField) Gradient(x, y int) (gx, gy float64) {
	i := y*f.Width + x
	return f.GradX[i], f.GradY[i]
}

// EdgeCount returns the number of edge pixels.
func (f *EdgeField) EdgeCount() int {
	n := 0
	for _, e := range f.Edges {
		if e {
			n++
		}
	}
	return n
}

// Canny computes edge fields with the configured thresholds. It satisfies the
// detection package's edge provider contract.
type Canny struct {
	Options EdgeOptions
}

// EdgeField computes the edge mask and gradients for img.
func (c Canny) EdgeField(img image.Image) (*EdgeField, error) {
	return ComputeEdgeField(img, c.Options)
}

// ComputeEdgeField derives the edge mask and gradient fields used by the
// stroke width transform.
//
// Parameters:
//   - img: Source image (color or grayscale). Must have non-zero size.
//   - opts: Hysteresis thresholds for the edge mask.
//
// Returns:
//   - *EdgeField: Mask and gradients with the same dimensions as img.
//   - error: ErrUnsupportedImage if img is empty, or invalid thresholds.
//
// # Algorithm
//
// Edge mask (Canny on the 8-bit grayscale image, no pre-blur):
//
//  1. Sobel 3x3 gradients, magnitude = |Gx| + |Gy|
//  2. Non-maximum suppression across the quantized gradient direction
//  3. Hysteresis: pixels above High seed edges which grow through 8-connected
//     pixels above Low
//
// Gradient fields:
//
//  1. Grayscale scaled to 0..1
//  2. 5x5 Gaussian blur
//  3. Scharr X and Y derivatives
//  4. 3x3 median filter on each derivative
func ComputeEdgeField(img image.Image, opts EdgeOptions) (*EdgeField, error) {
	if err := ValidateImage(img); err != nil {
		return nil, err
	}
	if opts.Low < 0 || opts.High < opts.Low {
		return nil, fmt.Errorf("invalid edge thresholds low=%v high=%v", opts.Low, opts.High)
	}

	gray := ToGray(img)
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()

	field := NewEdgeField(width, height)
	cannyMask(gray, opts, field.Edges)

	lum := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x, v := range row {
			lum[y*width+x] = float64(v) / 255.0
		}
	}
	blurred := gaussianBlur(lum, width, height)
	gx, gy := scharr(blurred, width, height)
	field.GradX = median3(gx, width, height)
	field.GradY = median3(gy, width, height)

	return field, nil
}

// cannyMask writes the Canny edge mask of gray into edges.
func cannyMask(gray *image.Gray, opts EdgeOptions, edges []bool) {
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()
	at := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.Pix[y*gray.Stride+x])
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			magnitude[y*width+x] = math.Abs(gx) + math.Abs(gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			mag := magnitude[i]
			if mag <= opts.Low {
				continue
			}
			angle := direction[i]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			default:
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Hysteresis: grow strong pixels through weak neighbours.
	stack := make([]int, 0, 64)
	for i, v := range suppressed {
		if v > opts.High && !edges[i] {
			edges[i] = true
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cx, cy := cur%width, cur/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := cx+dx, cy+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					n := ny*width + nx
					if !edges[n] && suppressed[n] > opts.Low {
						edges[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
	}
}

// gaussianBlur applies a 5x5 Gaussian blur.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(img []float64, width, height int) []float64 {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	const kernelSum = 273.0

	result := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				py := clamp(y+ky, 0, height-1)
				for kx := -2; kx <= 2; kx++ {
					px := clamp(x+kx, 0, width-1)
					sum += img[py*width+px] * kernel[ky+2][kx+2]
				}
			}
			result[y*width+x] = sum / kernelSum
		}
	}
	return result
}

// scharr returns the Scharr X and Y derivatives of img.
func scharr(img []float64, width, height int) (gx, gy []float64) {
	at := func(x, y int) float64 {
		return img[clamp(y, 0, height-1)*width+clamp(x, 0, width-1)]
	}
	gx = make([]float64, width*height)
	gy = make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx[y*width+x] = 3*(at(x+1, y-1)-at(x-1, y-1)) +
				10*(at(x+1, y)-at(x-1, y)) +
				3*(at(x+1, y+1)-at(x-1, y+1))
			gy[y*width+x] = 3*(at(x-1, y+1)-at(x-1, y-1)) +
				10*(at(x, y+1)-at(x, y-1)) +
				3*(at(x+1, y+1)-at(x+1, y-1))
		}
	}
	return gx, gy
}

// median3 applies a 3x3 median filter with replicated borders.
func median3(img []float64, width, height int) []float64 {
	result := make([]float64, width*height)
	var window [9]float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			k := 0
			for ky := -1; ky <= 1; ky++ {
				py := clamp(y+ky, 0, height-1)
				for kx := -1; kx <= 1; kx++ {
					window[k] = img[py*width+clamp(x+kx, 0, width-1)]
					k++
				}
			}
			w := window[:]
			sort.Float64s(w)
			result[y*width+x] = w[4]
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
