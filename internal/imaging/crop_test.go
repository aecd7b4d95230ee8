package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCropRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := CropRegion(img, image.Rect(0, 0, 50, 50), 1.0)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}

	if result.Bounds() != image.Rect(0, 0, 50, 50) {
		t.Errorf("bounds: got %v, want (0,0)-(50,50)", result.Bounds())
	}

	// Top-left quadrant is red
	r, g, b, _ := result.At(25, 25).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("cropped image color: got (%d,%d,%d), want (255,0,0)", r>>8, g>>8, b>>8)
	}
}

func TestCropRegion_Scale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name          string
		rect          image.Rectangle
		scale         float64
		width, height int
	}{
		{"scale up", image.Rect(0, 0, 50, 50), 2.0, 100, 100},
		{"scale down", image.Rect(0, 0, 100, 100), 0.5, 50, 50},
		{"zero keeps size", image.Rect(10, 20, 40, 30), 0, 30, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CropRegion(img, tt.rect, tt.scale)
			if err != nil {
				t.Fatalf("CropRegion failed: %v", err)
			}
			if result.Bounds().Dx() != tt.width || result.Bounds().Dy() != tt.height {
				t.Errorf("dimensions: got %v, want %dx%d", result.Bounds(), tt.width, tt.height)
			}
		})
	}
}

func TestCropRegion_Errors(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	tests := []struct {
		name  string
		rect  image.Rectangle
		scale float64
	}{
		{"outside bounds", image.Rect(50, 50, 150, 150), 1},
		{"negative origin", image.Rect(-10, 0, 20, 20), 1},
		{"empty region", image.Rect(20, 20, 20, 40), 1},
		{"negative scale", image.Rect(0, 0, 10, 10), -1},
		{"scaled to nothing", image.Rect(0, 0, 10, 10), 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropRegion(img, tt.rect, tt.scale); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCropRegion_OffsetImage(t *testing.T) {
	base := createPatternImage(100, 100)
	sub := base.SubImage(image.Rect(50, 0, 100, 50))

	result, err := CropRegion(sub, image.Rect(60, 10, 70, 20), 1)
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	// Top-right quadrant is green
	r, g, b, _ := result.At(5, 5).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("cropped image color: got (%d,%d,%d), want (0,255,0)", r>>8, g>>8, b>>8)
	}

	if _, err := CropRegion(sub, image.Rect(0, 0, 10, 10), 1); err == nil {
		t.Error("region outside the sub-image should fail")
	}
}

func TestPadRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)

	tests := []struct {
		in     image.Rectangle
		margin int
		want   image.Rectangle
	}{
		{image.Rect(10, 10, 20, 20), 5, image.Rect(5, 5, 25, 25)},
		{image.Rect(2, 2, 20, 48), 5, image.Rect(0, 0, 25, 50)},
		{image.Rect(10, 10, 20, 20), 0, image.Rect(10, 10, 20, 20)},
	}

	for _, tt := range tests {
		if got := PadRect(tt.in, tt.margin, bounds); got != tt.want {
			t.Errorf("PadRect(%v, %d) = %v, want %v", tt.in, tt.margin, got, tt.want)
		}
	}
}
