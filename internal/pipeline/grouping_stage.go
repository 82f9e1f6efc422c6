package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
	"github.com/joseph-ayodele/bol-annotator/internal/grouping"
	"github.com/joseph-ayodele/bol-annotator/internal/jobstore"
)

// GroupingStage asks the VLM to partition each page's fragments into
// semantic groups. Pages run in paced concurrent batches.
type GroupingStage struct {
	ImageDir  string
	OCRDir    string
	OutputDir string
	Grouper   *grouping.Grouper
	Store     *jobstore.Store
	Log       *slog.Logger
	BatchSize int
	Interval  time.Duration
}

func (s *GroupingStage) Run(ctx context.Context) (Stats, error) {
	ocrFiles, err := filepath.Glob(filepath.Join(s.OCRDir, "*.json"))
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	var tasks []vlmTask
	for _, ocrFile := range ocrFiles {
		stem := annotation.Stem(ocrFile)
		outPath := filepath.Join(s.OutputDir, stem+".json")
		if exists(outPath) {
			s.Log.Debug("grouping.skip_existing", "page", stem)
			continue
		}
		img, ok := findImage(s.ImageDir, stem)
		if !ok {
			stats.Total++
			stats.Failed++
			s.Log.Error("grouping.image_missing", "page", stem)
			_ = s.Store.Record(ctx, stem, constants.StageGrouping, constants.JobStatusFailed, "page image not found")
			continue
		}
		tasks = append(tasks, vlmTask{Stem: stem, Image: img, OCR: ocrFile, Output: outPath})
	}
	stats.Total += len(tasks)

	var groupsTotal atomic.Int64
	success, failed := runBatches(ctx, s.Log, tasks, s.BatchSize, s.Interval, func(ctx context.Context, t vlmTask) error {
		_ = s.Store.Record(ctx, t.Stem, constants.StageGrouping, constants.JobStatusRunning, "")

		var ocrResult annotation.OCRResult
		if err := annotation.ReadJSON(t.OCR, &ocrResult); err != nil {
			s.Log.Error("grouping.read_failed", "page", t.Stem, "error", err)
			_ = s.Store.Record(ctx, t.Stem, constants.StageGrouping, constants.JobStatusFailed, err.Error())
			return err
		}

		groups, err := s.Grouper.Group(ctx, t.Image, ocrResult.TextBoxes)
		if err != nil {
			s.Log.Error("grouping.failed", "page", t.Stem, "error", err)
			_ = s.Store.Record(ctx, t.Stem, constants.StageGrouping, constants.JobStatusFailed, err.Error())
			return err
		}

		result := annotation.GroupingResult{
			ImageName:   filepath.Base(t.Image),
			OCRFile:     filepath.Base(t.OCR),
			Groups:      groups,
			TotalGroups: len(groups),
			TotalBoxes:  ocrResult.TotalBoxes,
		}
		if err := annotation.WriteJSON(t.Output, result); err != nil {
			s.Log.Error("grouping.write_failed", "page", t.Stem, "error", err)
			_ = s.Store.Record(ctx, t.Stem, constants.StageGrouping, constants.JobStatusFailed, err.Error())
			return err
		}

		groupsTotal.Add(int64(len(groups)))
		s.Log.Info("grouping.ok", "page", t.Stem, "groups", len(groups))
		_ = s.Store.Record(ctx, t.Stem, constants.StageGrouping, constants.JobStatusDone, "")
		return nil
	})

	stats.Success += success
	stats.Failed += failed
	stats.Groups = int(groupsTotal.Load())
	stats.LogSummary(s.Log, constants.StageGrouping)
	return stats, nil
}
