package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

// TesseractConfig configures the gosseract-backed engine. Requires the
// Tesseract C library at build time and the language data at run time.
type TesseractConfig struct {
	Language    string // default "eng"; "+"-separated for multiple
	TessdataDir string // optional TESSDATA_PREFIX override
	PSM         int    // page segmentation mode; 0 keeps the library default
}

// Tesseract extracts line-level fragments via gosseract. A fresh client is
// created per page so concurrent callers never share native state.
type Tesseract struct {
	cfg    TesseractConfig
	logger *slog.Logger
}

func NewTesseract(cfg TesseractConfig, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg, logger: logger}
}

// Recognize runs Tesseract on the page image and returns normalized
// fragments at text-line granularity. Confidence passes through from the
// engine, scaled to [0,1].
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) ([]annotation.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			t.logger.Warn("tesseract client close error", "error", err)
		}
	}()

	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if err := client.SetLanguage(t.cfg.Language); err != nil {
		return nil, fmt.Errorf("set language %q: %w", t.cfg.Language, err)
	}
	if t.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataDir); err != nil {
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if t.cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(t.cfg.PSM)); err != nil {
			return nil, fmt.Errorf("set psm %d: %w", t.cfg.PSM, err)
		}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	raw := make([]rawBox, 0, len(boxes))
	for _, b := range boxes {
		raw = append(raw, rawBox{text: b.Word, rect: b.Box, confidence: b.Confidence})
	}
	frags := toFragments(raw)

	t.logger.Debug("ocr.recognize",
		"image", imagePath,
		"lines", len(boxes),
		"fragments", len(frags),
	)
	return frags, nil
}
