package ocr

import (
	"image"
	"math"
	"strings"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

// rawBox is one backend detection before normalization. Confidence is on
// the backend's native 0..100 scale.
type rawBox struct {
	text       string
	rect       image.Rectangle
	confidence float64
}

// toFragments normalizes backend detections into the pipeline fragment
// shape: blank detections are dropped, IDs are assigned by emission order,
// confidence is scaled to [0,1] and rounded to four decimals, and a
// quadrilateral polygon is synthesized from the rectangle corners
// (clockwise from top-left).
func toFragments(raw []rawBox) []annotation.Fragment {
	frags := make([]annotation.Fragment, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.text)
		if text == "" {
			continue
		}
		box := annotation.Box{r.rect.Min.X, r.rect.Min.Y, r.rect.Max.X, r.rect.Max.Y}
		frags = append(frags, annotation.Fragment{
			ID:   len(frags),
			Text: text,
			Box:  box,
			Polygon: [][2]int{
				{box[0], box[1]},
				{box[2], box[1]},
				{box[2], box[3]},
				{box[0], box[3]},
			},
			Confidence: roundConfidence(r.confidence / 100.0),
		})
	}
	return frags
}

func roundConfidence(c float64) float64 {
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return math.Round(c*10000) / 10000
}
