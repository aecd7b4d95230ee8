package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
)

// EncodedImage contains a rendered image encoded as base64 PNG.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode converts img into a base64 PNG result.
func Encode(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// LabeledBox is a rectangle drawn on a debug render. Rect uses inclusive
// pixel coordinates for both corners.
type LabeledBox struct {
	Rect  image.Rectangle
	Label string
	Color color.Color
}

// BoxColor cycles red, green and blue by index.
func BoxColor(i int) color.Color {
	switch i % 3 {
	case 0:
		return color.RGBA{255, 0, 0, 255}
	case 1:
		return color.RGBA{0, 255, 0, 255}
	default:
		return color.RGBA{0, 0, 255, 255}
	}
}

// RenderValueMap renders a row-major float map as grayscale. Negative values
// (unset pixels) are white; the rest are scaled so the smallest value is black
// and the largest is white.
func RenderValueMap(width, height int, values []float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	minVal, maxVal := 0.0, 0.0
	found := false
	for _, v := range values {
		if v < 0 {
			continue
		}
		if !found || v < minVal {
			minVal = v
		}
		if !found || v > maxVal {
			maxVal = v
		}
		found = true
	}
	diff := maxVal - minVal
	for i, v := range values {
		switch {
		case v < 0:
			img.Pix[i] = 255
		case diff == 0:
			img.Pix[i] = 0
		default:
			img.Pix[i] = uint8(255 * (v - minVal) / diff)
		}
	}
	return img
}

// DrawBoxes draws outlined boxes with their labels over a copy of base.
func DrawBoxes(base image.Image, boxes []LabeledBox) image.Image {
	dc := gg.NewContextForImage(base)
	dc.SetLineWidth(1)
	for _, box := range boxes {
		dc.SetColor(box.Color)
		r := box.Rect
		dc.DrawRectangle(float64(r.Min.X)+0.5, float64(r.Min.Y)+0.5,
			float64(r.Dx()), float64(r.Dy()))
		dc.Stroke()
		if box.Label != "" {
			dc.DrawString(box.Label, float64(r.Min.X), float64(r.Min.Y)-1)
		}
	}
	return dc.Image()
}
