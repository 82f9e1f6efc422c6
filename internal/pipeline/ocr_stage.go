package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
	"github.com/joseph-ayodele/bol-annotator/internal/jobstore"
	"github.com/joseph-ayodele/bol-annotator/internal/ocr"
	"github.com/joseph-ayodele/bol-annotator/internal/visualize"
)

// OCRStage extracts text fragments from every page image that does not
// yet have an OCR artifact.
type OCRStage struct {
	ImageDir     string
	OutputDir    string
	VisualizeDir string // empty disables overlays
	Engine       ocr.Engine
	Store        *jobstore.Store
	Log          *slog.Logger
}

func (s *OCRStage) Run(ctx context.Context) (Stats, error) {
	images, err := listByExt(s.ImageDir, constants.ScanImageExtensions)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stem := annotation.Stem(img)
		outPath := filepath.Join(s.OutputDir, stem+".json")
		if exists(outPath) {
			s.Log.Debug("ocr.skip_existing", "image", filepath.Base(img))
			continue
		}
		stats.Total++

		_ = s.Store.Record(ctx, stem, constants.StageOCR, constants.JobStatusRunning, "")
		fragments, err := s.Engine.Recognize(ctx, img)
		if err != nil {
			stats.Failed++
			s.Log.Error("ocr.failed", "image", filepath.Base(img), "error", err)
			_ = s.Store.Record(ctx, stem, constants.StageOCR, constants.JobStatusFailed, err.Error())
			continue
		}

		result := annotation.OCRResult{
			ImageName:  filepath.Base(img),
			ImagePath:  img,
			TextBoxes:  fragments,
			TotalBoxes: len(fragments),
		}
		if err := annotation.WriteJSON(outPath, result); err != nil {
			stats.Failed++
			s.Log.Error("ocr.write_failed", "image", filepath.Base(img), "error", err)
			_ = s.Store.Record(ctx, stem, constants.StageOCR, constants.JobStatusFailed, err.Error())
			continue
		}

		stats.Success++
		stats.Boxes += len(fragments)
		if len(fragments) == 0 {
			s.Log.Warn("ocr.no_text", "image", filepath.Base(img))
		}
		s.Log.Info("ocr.ok", "image", filepath.Base(img), "boxes", len(fragments))
		_ = s.Store.Record(ctx, stem, constants.StageOCR, constants.JobStatusDone, "")

		if s.VisualizeDir != "" {
			overlay := filepath.Join(s.VisualizeDir, stem+"_ocr.png")
			if err := visualize.DrawOCRBoxes(img, fragments, overlay); err != nil {
				s.Log.Warn("ocr.visualize_failed", "image", filepath.Base(img), "error", err)
			}
		}
	}

	stats.LogSummary(s.Log, constants.StageOCR)
	return stats, nil
}
