package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/bibnumber/internal/imaging"
)

// RenderStrokeWidth renders the stroke width map. Thin strokes are dark and
// pixels without a stroke width are white.
func RenderStrokeWidth(swt *StrokeWidthMap) *image.Gray {
	return imaging.RenderValueMap(swt.Width, swt.Height, swt.Values)
}

// RenderComponents outlines every component on img, labelled by index.
func RenderComponents(img image.Image, components []Component) image.Image {
	boxes := make([]imaging.LabeledBox, len(components))
	for i, c := range components {
		boxes[i] = imaging.LabeledBox{
			Rect:  image.Rect(c.Bounds.X1, c.Bounds.Y1, c.Bounds.X2, c.Bounds.Y2),
			Label: fmt.Sprint(c.Index),
			Color: imaging.BoxColor(i),
		}
	}
	return imaging.DrawBoxes(img, boxes)
}

// RenderLines outlines the candidate lines of a result on img, labelled with
// their accepted text.
func RenderLines(img image.Image, lines []Line) image.Image {
	boxes := make([]imaging.LabeledBox, len(lines))
	for i, l := range lines {
		b := l.Bounds
		boxes[i] = imaging.LabeledBox{
			Rect:  image.Rect(b.X1, b.Y1, b.X2, b.Y2),
			Label: l.Text,
			Color: imaging.BoxColor(i),
		}
	}
	return imaging.DrawBoxes(img, boxes)
}

// RenderChains outlines the union box of every chain on img.
func RenderChains(img image.Image, chains []Chain, components []Component) image.Image {
	boxes := make([]imaging.LabeledBox, 0, len(chains))
	for i, ch := range chains {
		if len(ch.Components) == 0 {
			continue
		}
		b := components[ch.Components[0]].Bounds
		for _, idx := range ch.Components[1:] {
			b = b.Union(components[idx].Bounds)
		}
		boxes = append(boxes, imaging.LabeledBox{
			Rect:  image.Rect(b.X1, b.Y1, b.X2, b.Y2),
			Label: fmt.Sprintf("%d", len(ch.Components)),
			Color: imaging.BoxColor(i),
		})
	}
	return imaging.DrawBoxes(img, boxes)
}
