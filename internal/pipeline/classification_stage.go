package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
	"github.com/joseph-ayodele/bol-annotator/internal/classify"
	"github.com/joseph-ayodele/bol-annotator/internal/jobstore"
)

// ClassificationStage asks the VLM to assign one taxonomy label to each
// semantic group of a page. Pages run in paced concurrent batches.
type ClassificationStage struct {
	ImageDir    string
	OCRDir      string
	GroupingDir string
	OutputDir   string
	Classifier  *classify.Classifier
	Store       *jobstore.Store
	Log         *slog.Logger
	BatchSize   int
	Interval    time.Duration
}

func (s *ClassificationStage) Run(ctx context.Context) (Stats, error) {
	groupingFiles, err := filepath.Glob(filepath.Join(s.GroupingDir, "*.json"))
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	var tasks []vlmTask
	for _, gf := range groupingFiles {
		stem := annotation.Stem(gf)
		outPath := filepath.Join(s.OutputDir, stem+".json")
		if exists(outPath) {
			s.Log.Debug("classification.skip_existing", "page", stem)
			continue
		}
		img, ok := findImage(s.ImageDir, stem)
		if !ok {
			stats.Total++
			stats.Failed++
			s.Log.Error("classification.image_missing", "page", stem)
			_ = s.Store.Record(ctx, stem, constants.StageClassification, constants.JobStatusFailed, "page image not found")
			continue
		}
		tasks = append(tasks, vlmTask{
			Stem:     stem,
			Image:    img,
			OCR:      filepath.Join(s.OCRDir, stem+".json"),
			Grouping: gf,
			Output:   outPath,
		})
	}
	stats.Total += len(tasks)

	success, failed := runBatches(ctx, s.Log, tasks, s.BatchSize, s.Interval, func(ctx context.Context, t vlmTask) error {
		_ = s.Store.Record(ctx, t.Stem, constants.StageClassification, constants.JobStatusRunning, "")

		var ocrResult annotation.OCRResult
		if err := annotation.ReadJSON(t.OCR, &ocrResult); err != nil {
			s.Log.Error("classification.read_failed", "page", t.Stem, "error", err)
			_ = s.Store.Record(ctx, t.Stem, constants.StageClassification, constants.JobStatusFailed, err.Error())
			return err
		}
		var groupingResult annotation.GroupingResult
		if err := annotation.ReadJSON(t.Grouping, &groupingResult); err != nil {
			s.Log.Error("classification.read_failed", "page", t.Stem, "error", err)
			_ = s.Store.Record(ctx, t.Stem, constants.StageClassification, constants.JobStatusFailed, err.Error())
			return err
		}

		cls, err := s.Classifier.Classify(ctx, t.Image, ocrResult.TextBoxes, groupingResult.Groups)
		if err != nil {
			s.Log.Error("classification.failed", "page", t.Stem, "error", err)
			_ = s.Store.Record(ctx, t.Stem, constants.StageClassification, constants.JobStatusFailed, err.Error())
			return err
		}

		result := annotation.ClassificationResult{
			ImageName:       filepath.Base(t.Image),
			OCRFile:         filepath.Base(t.OCR),
			GroupingFile:    filepath.Base(t.Grouping),
			Classifications: cls,
			LabelMapping:    constants.IDToNameMapping(),
		}
		if err := annotation.WriteJSON(t.Output, result); err != nil {
			s.Log.Error("classification.write_failed", "page", t.Stem, "error", err)
			_ = s.Store.Record(ctx, t.Stem, constants.StageClassification, constants.JobStatusFailed, err.Error())
			return err
		}

		s.Log.Info("classification.ok", "page", t.Stem, "labels", len(cls))
		_ = s.Store.Record(ctx, t.Stem, constants.StageClassification, constants.JobStatusDone, "")
		return nil
	})

	stats.Success += success
	stats.Failed += failed
	stats.LogSummary(s.Log, constants.StageClassification)
	return stats, nil
}
