// Package ocr extracts text fragments with bounding geometry from page
// images. The engine itself is a black box behind the Engine interface so
// the downstream grouping, classification and merge logic is testable with
// canned fragments.
package ocr

import (
	"context"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

// Engine is the OCR backend contract. Implementations return fragments in
// emission order with IDs already assigned as the 0-based position in that
// order. Zero fragments with a nil error is a valid result for a blank
// page.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) ([]annotation.Fragment, error)
}
