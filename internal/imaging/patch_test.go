package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// splitGray returns a gray image whose left half is dark and right half bright.
func splitGray(width, height int, dark, bright uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.SetGray(x, y, color.Gray{Y: dark})
			} else {
				img.SetGray(x, y, color.Gray{Y: bright})
			}
		}
	}
	return img
}

func TestToGray(t *testing.T) {
	t.Run("gray input is returned as is", func(t *testing.T) {
		g := image.NewGray(image.Rect(0, 0, 4, 4))
		if ToGray(g) != g {
			t.Error("ToGray copied an origin-anchored gray image")
		}
	})

	t.Run("color weights", func(t *testing.T) {
		tests := []struct {
			c    color.Color
			want uint8
		}{
			{color.RGBA{255, 0, 0, 255}, 76},
			{color.RGBA{0, 255, 0, 255}, 150},
			{color.RGBA{0, 0, 255, 255}, 29},
			{color.White, 255},
			{color.Black, 0},
		}
		for _, tt := range tests {
			g := ToGray(createInMemoryImage(3, 3, tt.c))
			if got := g.GrayAt(1, 1).Y; got != tt.want {
				t.Errorf("ToGray(%v) = %d, want %d", tt.c, got, tt.want)
			}
		}
	})

	t.Run("offset image is moved to the origin", func(t *testing.T) {
		base := createPatternImage(100, 100)
		sub := base.SubImage(image.Rect(50, 50, 100, 100))
		g := ToGray(sub)
		if g.Rect != image.Rect(0, 0, 50, 50) {
			t.Fatalf("Rect = %v, want (0,0)-(50,50)", g.Rect)
		}
		if g.GrayAt(0, 0).Y != 255 {
			t.Errorf("corner = %d, want white", g.GrayAt(0, 0).Y)
		}
	})
}

func TestOtsuThreshold(t *testing.T) {
	tests := []struct {
		name string
		img  *image.Gray
		r    image.Rectangle
		want uint8
	}{
		{"two levels", splitGray(10, 10, 10, 200), image.Rect(0, 0, 10, 10), 10},
		{"black and white", splitGray(10, 10, 0, 255), image.Rect(0, 0, 10, 10), 0},
		{"uniform region", splitGray(10, 10, 10, 200), image.Rect(0, 0, 5, 10), 0},
		{"empty region", splitGray(10, 10, 10, 200), image.Rect(20, 20, 30, 30), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OtsuThreshold(tt.img, tt.r); got != tt.want {
				t.Errorf("OtsuThreshold = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOtsuThreshold_Separates(t *testing.T) {
	// Three populations: the level falls between the dark one and the others.
	img := image.NewGray(image.Rect(0, 0, 30, 1))
	for x := 0; x < 30; x++ {
		switch {
		case x < 15:
			img.Pix[x] = 20
		case x < 22:
			img.Pix[x] = 180
		default:
			img.Pix[x] = 220
		}
	}

	level := OtsuThreshold(img, img.Rect)
	if level < 20 || level >= 180 {
		t.Errorf("OtsuThreshold = %d, want within [20, 180)", level)
	}
}

func TestBinarizeRegion(t *testing.T) {
	src := splitGray(10, 10, 10, 200)

	tests := []struct {
		name        string
		invert      bool
		left, right uint8
	}{
		{"bright is white", false, 0, 255},
		{"dark is white", true, 255, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := image.NewGray(src.Rect)
			BinarizeRegion(dst, src, src.Rect, tt.invert)
			if got := dst.GrayAt(2, 5).Y; got != tt.left {
				t.Errorf("left half = %d, want %d", got, tt.left)
			}
			if got := dst.GrayAt(7, 5).Y; got != tt.right {
				t.Errorf("right half = %d, want %d", got, tt.right)
			}
		})
	}
}

func TestBinarizeRegion_OnlyTouchesRegion(t *testing.T) {
	src := splitGray(20, 10, 10, 200)
	dst := image.NewGray(src.Rect)
	for i := range dst.Pix {
		dst.Pix[i] = 77
	}

	r := image.Rect(8, 2, 12, 6)
	BinarizeRegion(dst, src, r, false)

	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			got := dst.GrayAt(x, y).Y
			inside := image.Pt(x, y).In(r)
			switch {
			case !inside && got != 77:
				t.Errorf("pixel (%d, %d) outside the region changed to %d", x, y, got)
			case inside && x < 10 && got != 0:
				t.Errorf("dark pixel (%d, %d) = %d, want 0", x, y, got)
			case inside && x >= 10 && got != 255:
				t.Errorf("bright pixel (%d, %d) = %d, want 255", x, y, got)
			}
		}
	}

	// A region outside the image is ignored.
	BinarizeRegion(dst, src, image.Rect(30, 30, 40, 40), false)
}

func TestRotatePoint(t *testing.T) {
	tests := []struct {
		name         string
		x, y, deg    float64
		wantX, wantY float64
	}{
		{"no rotation", 7, 3, 0, 7, 3},
		{"quarter turn", 10, 0, 90, 0, -10},
		{"half turn", 10, 5, 180, -10, -5},
		{"negative quarter turn", 10, 0, -90, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := RotatePoint(tt.x, tt.y, 0, 0, tt.deg)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
				t.Errorf("RotatePoint = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}

	// Rotation about a center other than the origin.
	x, y := RotatePoint(30, 20, 30, 30, 90)
	if math.Abs(x-20) > 1e-9 || math.Abs(y-30) > 1e-9 {
		t.Errorf("RotatePoint about (30, 30) = (%v, %v), want (20, 30)", x, y)
	}
}

func TestRotateAbout(t *testing.T) {
	// White 3x3 block centered on (30, 20).
	img := image.NewGray(image.Rect(0, 0, 61, 61))
	for y := 19; y <= 21; y++ {
		for x := 29; x <= 31; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	t.Run("zero degrees", func(t *testing.T) {
		out := RotateAbout(img, image.Pt(30, 30), 0)
		if out.Rect != img.Rect {
			t.Fatalf("Rect = %v, want %v", out.Rect, img.Rect)
		}
		for i := range img.Pix {
			if out.Pix[i] != img.Pix[i] {
				t.Fatalf("pixel %d changed", i)
			}
		}
	})

	t.Run("quarter turn follows RotatePoint", func(t *testing.T) {
		out := RotateAbout(img, image.Pt(30, 30), 90)
		if out.Rect != img.Rect {
			t.Fatalf("Rect = %v, want %v", out.Rect, img.Rect)
		}
		if out.GrayAt(20, 30).Y != 255 {
			t.Errorf("rotated block missing at (20, 30)")
		}
		if out.GrayAt(30, 20).Y != 0 {
			t.Errorf("original position (30, 20) still white")
		}
	})
}

func TestFinishPatch(t *testing.T) {
	rotated := image.NewGray(image.Rect(0, 0, 20, 10))
	for y := 2; y < 8; y++ {
		for x := 5; x < 15; x++ {
			rotated.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	roi := image.Rect(5, 2, 15, 8)

	t.Run("border only", func(t *testing.T) {
		patch := FinishPatch(rotated, roi, PatchOptions{Border: 2, Upscale: 1})
		if patch.Rect != image.Rect(0, 0, 14, 10) {
			t.Fatalf("Rect = %v, want 14x10", patch.Rect)
		}
		checks := []struct {
			x, y int
			want uint8
		}{
			{0, 0, 0},
			{1, 5, 0},
			{2, 2, 255},
			{11, 7, 255},
			{12, 7, 0},
		}
		for _, c := range checks {
			if got := patch.GrayAt(c.x, c.y).Y; got != c.want {
				t.Errorf("pixel (%d, %d) = %d, want %d", c.x, c.y, got, c.want)
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		patch := FinishPatch(rotated, roi, DefaultPatchOptions())
		if patch.Rect != image.Rect(0, 0, 48, 36) {
			t.Fatalf("Rect = %v, want 48x36", patch.Rect)
		}
		if patch.GrayAt(24, 18).Y != 255 {
			t.Error("patch center should stay white")
		}
		if patch.GrayAt(1, 1).Y != 0 {
			t.Error("patch border should be black")
		}
		// Resizing blends the stroke edge into column 8; erosion clears it again.
		if patch.GrayAt(8, 18).Y != 0 {
			t.Errorf("pixel (8, 18) = %d, want the blended edge eroded", patch.GrayAt(8, 18).Y)
		}
	})
}

func TestEllipseSpans(t *testing.T) {
	tests := []struct {
		r    int
		want []int
	}{
		{1, []int{0, 1, 0}},
		{2, []int{0, 2, 2, 2, 0}},
		{3, []int{0, 2, 3, 3, 3, 2, 0}},
	}
	for _, tt := range tests {
		got := ellipseSpans(tt.r)
		if len(got) != len(tt.want) {
			t.Fatalf("ellipseSpans(%d) = %v, want %v", tt.r, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ellipseSpans(%d) = %v, want %v", tt.r, got, tt.want)
				break
			}
		}
	}
}

func TestFinishPatch_ErodesWithEllipse(t *testing.T) {
	rotated := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range rotated.Pix {
		rotated.Pix[i] = 255
	}
	rotated.SetGray(20, 20, color.Gray{Y: 0})

	// Radius 2: a 5x5 element without its outer corners and the pixels
	// beside them on the top and bottom rows.
	patch := FinishPatch(rotated, rotated.Rect, PatchOptions{Upscale: 1, ErodeFraction: 2.0 / 40})
	if patch.Rect != rotated.Rect {
		t.Fatalf("Rect = %v, want %v", patch.Rect, rotated.Rect)
	}

	tests := []struct {
		name string
		x, y int
		want uint8
	}{
		{"source", 20, 20, 0},
		{"right edge", 22, 20, 0},
		{"bottom edge", 20, 22, 0},
		{"inner diagonal", 21, 21, 0},
		{"row beside center", 22, 21, 0},
		{"outer corner", 22, 22, 255},
		{"outer corner opposite", 18, 18, 255},
		{"top row off center", 21, 18, 255},
		{"bottom row off center", 21, 22, 255},
		{"outside radius", 23, 20, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := patch.GrayAt(tt.x, tt.y).Y; got != tt.want {
				t.Errorf("pixel (%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestErodeEllipse_OffsetBounds(t *testing.T) {
	gray := image.NewGray(image.Rect(5, 5, 15, 15))
	for i := range gray.Pix {
		gray.Pix[i] = 200
	}
	gray.SetGray(5, 5, color.Gray{Y: 10})

	out := ErodeEllipse(gray, 1)
	if out.Rect != gray.Rect {
		t.Fatalf("Rect = %v, want %v", out.Rect, gray.Rect)
	}
	for _, p := range []image.Point{{5, 5}, {6, 5}, {5, 6}} {
		if got := out.GrayAt(p.X, p.Y).Y; got != 10 {
			t.Errorf("pixel %v = %d, want 10", p, got)
		}
	}
	if got := out.GrayAt(6, 6).Y; got != 200 {
		t.Errorf("diagonal pixel = %d, want 200", got)
	}
}
