package funsd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

// Merger builds final FUNSD documents from the three upstream artifacts of
// a page.
type Merger struct {
	logger *slog.Logger
}

func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger}
}

// BuildDocument combines the page's OCR result, grouping partition and
// classification mapping into the final annotation document, and reports
// how many group references pointed at nonexistent fragment IDs. A page
// that yields zero entities is still a successful merge.
func (m *Merger) BuildDocument(imagePath string, ocr annotation.OCRResult, grouping annotation.GroupingResult, cls annotation.ClassificationResult) (annotation.Document, int, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return annotation.Document{}, 0, fmt.Errorf("open page image: %w", err)
	}
	bounds := img.Bounds()

	form, dangling := BuildForm(ocr.TextBoxes, grouping.Groups, cls.Classifications)
	if dangling > 0 {
		// Tolerated, but surfaced: dangling references reduce dataset
		// completeness without failing the page.
		m.logger.Warn("merge.dangling_fragment_refs",
			"image", filepath.Base(imagePath),
			"dangling", dangling,
			"groups", len(grouping.Groups),
			"entities", len(form),
		)
	}

	return annotation.Document{
		Image:  filepath.Base(imagePath),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Form:   form,
	}, dangling, nil
}
