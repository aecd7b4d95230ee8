package batch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/bibnumber/internal/detection"
)

// WriteDebugImages saves the intermediate renders of one detection run into
// dir as <name>-swt.png, <name>-components.png, <name>-chains.png and
// <name>-lines.png, where name is the base name of path without extension.
func WriteDebugImages(dir, path string, img image.Image, det *detection.Result) error {
	if det == nil || det.Analysis == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create debug directory: %w", err)
	}

	a := det.Analysis
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	renders := []struct {
		stage string
		img   image.Image
	}{
		{"swt", detection.RenderStrokeWidth(a.SWT)},
		{"components", detection.RenderComponents(img, a.Components)},
		{"chains", detection.RenderChains(img, a.Chains, a.Components)},
		{"lines", detection.RenderLines(img, det.Lines)},
	}
	for _, r := range renders {
		out := filepath.Join(dir, name+"-"+r.stage+".png")
		if err := imaging.Save(r.img, out); err != nil {
			return fmt.Errorf("failed to save %s: %w", out, err)
		}
	}
	return nil
}
