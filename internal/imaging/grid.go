package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// GridOptions configures GridOverlay.
type GridOptions struct {
	// Spacing is the distance in pixels between grid lines.
	Spacing int

	// ShowCoordinates labels each grid intersection with "x,y".
	ShowCoordinates bool

	// Color is the line color as "#rrggbb". Invalid or empty values fall
	// back to red.
	Color string

	// TopBorder and BottomBorder shade the rows that component filtering
	// ignores, so border settings can be checked against a photo.
	TopBorder    int
	BottomBorder int
}

var (
	defaultGridColor = color.RGBA{255, 0, 0, 255}
	borderShade      = color.RGBA{0, 0, 0, 128}
)

// GridOverlay draws a coordinate grid over a copy of img. The result has
// its origin at (0, 0), matching the coordinates detection reports.
func GridOverlay(img image.Image, opts GridOptions) (image.Image, error) {
	if err := ValidateImage(img); err != nil {
		return nil, err
	}
	if opts.Spacing <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %d", opts.Spacing)
	}
	if opts.TopBorder < 0 || opts.BottomBorder < 0 {
		return nil, fmt.Errorf("borders must not be negative")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gridColor, err := parseHexColor(opts.Color)
	if err != nil {
		gridColor = defaultGridColor
	}

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Rect, img, bounds.Min, draw.Src)

	shade := image.NewUniform(borderShade)
	if opts.TopBorder > 0 {
		r := image.Rect(0, 0, width, opts.TopBorder).Intersect(result.Rect)
		draw.Draw(result, r, shade, image.Point{}, draw.Over)
	}
	if opts.BottomBorder > 0 {
		r := image.Rect(0, height-opts.BottomBorder, width, height).Intersect(result.Rect)
		draw.Draw(result, r, shade, image.Point{}, draw.Over)
	}

	for x := opts.Spacing; x < width; x += opts.Spacing {
		for y := 0; y < height; y++ {
			result.Set(x, y, gridColor)
		}
	}
	for y := opts.Spacing; y < height; y += opts.Spacing {
		for x := 0; x < width; x++ {
			result.Set(x, y, gridColor)
		}
	}

	if opts.ShowCoordinates {
		labelColor := color.RGBA{255, 255, 255, 255}
		bgColor := color.RGBA{0, 0, 0, 180}

		for y := opts.Spacing; y < height; y += opts.Spacing {
			for x := opts.Spacing; x < width; x += opts.Spacing {
				drawLabel(result, x+2, y+2, fmt.Sprintf("%d,%d", x, y), labelColor, bgColor)
			}
		}
	}

	return result, nil
}

// parseHexColor parses "#rrggbb" (the leading '#' is optional).
func parseHexColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// drawLabel draws text in a 3x5 pixel digit font on a filled background.
// Characters other than digits and ',' leave a gap.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
	}

	bounds := img.Bounds()
	const charWidth, labelHeight = 4, 7
	labelWidth := len(text) * charWidth

	set := func(px, py int, c color.RGBA) {
		if image.Pt(px, py).In(bounds) {
			img.SetRGBA(px, py, c)
		}
	}

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
