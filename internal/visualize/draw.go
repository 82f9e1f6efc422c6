// Package visualize renders annotation overlays onto page images: fragment
// boxes with their IDs after OCR, entity boxes colored by coarse label
// after the merge. Overlays are a debugging aid, not a pipeline artifact.
package visualize

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

var labelColors = map[string]color.NRGBA{
	"header":   {0, 0, 255, 255},
	"answer":   {0, 160, 0, 255},
	"question": {255, 165, 0, 255},
	"other":    {128, 128, 128, 255},
}

var (
	ocrBoxColor = color.NRGBA{255, 0, 0, 255}
	idColor     = color.NRGBA{0, 0, 255, 255}
)

// DrawOCRBoxes writes a copy of the page image with every fragment box
// outlined and tagged with its ID.
func DrawOCRBoxes(imagePath string, fragments []annotation.Fragment, outPath string) error {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	canvas := imaging.Clone(img)

	for _, f := range fragments {
		strokeRect(canvas, f.Box, ocrBoxColor, 2)
		drawText(canvas, f.Box[0], f.Box[1]-4, fmt.Sprintf("%d", f.ID), idColor)
	}
	return imaging.Save(canvas, outPath)
}

// DrawEntities writes a copy of the page image with every entity box
// outlined in its coarse-label color and tagged "<id>:<fine label>".
func DrawEntities(imagePath string, doc annotation.Document, outPath string) error {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	canvas := imaging.Clone(img)

	for _, e := range doc.Form {
		col, ok := labelColors[e.Label]
		if !ok {
			col = labelColors["other"]
		}
		strokeRect(canvas, e.Box, col, 2)
		drawText(canvas, e.Box[0], e.Box[1]-4, fmt.Sprintf("%d:%s", e.ID, e.BOLLabel), col)
	}
	return imaging.Save(canvas, outPath)
}

// strokeRect outlines box on img with the given stroke width, clamped to
// the image bounds.
func strokeRect(img *image.NRGBA, box annotation.Box, col color.NRGBA, width int) {
	for w := 0; w < width; w++ {
		x1, y1, x2, y2 := box[0]+w, box[1]+w, box[2]-w, box[3]-w
		if x1 > x2 || y1 > y2 {
			break
		}
		for x := x1; x <= x2; x++ {
			setClamped(img, x, y1, col)
			setClamped(img, x, y2, col)
		}
		for y := y1; y <= y2; y++ {
			setClamped(img, x1, y, col)
			setClamped(img, x2, y, col)
		}
	}
}

func setClamped(img *image.NRGBA, x, y int, col color.NRGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, col)
	}
}

func drawText(img *image.NRGBA, x, y int, s string, col color.NRGBA) {
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
