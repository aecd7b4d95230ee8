package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropRegion extracts r from img and resizes it by scale.
//
// r is expressed in img's own coordinate space. A scale of 0 or 1 keeps the
// original size. The result always has its origin at (0, 0).
func CropRegion(img image.Image, r image.Rectangle, scale float64) (image.Image, error) {
	bounds := img.Bounds()

	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: min must be less than max", r)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if scale < 0 {
		return nil, fmt.Errorf("invalid scale %v", scale)
	}

	var cropped image.Image = imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(r.Dx()) * scale)
		newHeight := int(float64(r.Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %v shrinks %dx%d region to nothing", scale, r.Dx(), r.Dy())
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}
	return cropped, nil
}

// PadRect grows r by margin on every side and clips it to bounds.
func PadRect(r image.Rectangle, margin int, bounds image.Rectangle) image.Rectangle {
	return r.Inset(-margin).Intersect(bounds)
}
