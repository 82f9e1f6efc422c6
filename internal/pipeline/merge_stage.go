package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
	"github.com/joseph-ayodele/bol-annotator/internal/funsd"
	"github.com/joseph-ayodele/bol-annotator/internal/jobstore"
	"github.com/joseph-ayodele/bol-annotator/internal/visualize"
)

// MergeStage combines the three upstream artifacts of each page into the
// final FUNSD document, copies the page image into the dataset and
// refreshes the dataset companion file. It runs sequentially; the work is
// local and fast.
type MergeStage struct {
	ImageDir          string
	OCRDir            string
	GroupingDir       string
	ClassificationDir string
	OutputDir         string
	VisualizeDir      string // empty disables overlays
	Merger            *funsd.Merger
	Store             *jobstore.Store
	Log               *slog.Logger
}

func (s *MergeStage) annotationsDir() string { return filepath.Join(s.OutputDir, "annotations") }
func (s *MergeStage) imagesDir() string      { return filepath.Join(s.OutputDir, "images") }

func (s *MergeStage) Run(ctx context.Context) (Stats, error) {
	clsFiles, err := filepath.Glob(filepath.Join(s.ClassificationDir, "*.json"))
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, cf := range clsFiles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stem := annotation.Stem(cf)
		outPath := filepath.Join(s.annotationsDir(), stem+".json")
		if exists(outPath) {
			s.Log.Debug("merge.skip_existing", "page", stem)
			continue
		}
		stats.Total++

		_ = s.Store.Record(ctx, stem, constants.StageMerge, constants.JobStatusRunning, "")
		doc, dangling, err := s.mergePage(stem, cf, outPath)
		if err != nil {
			stats.Failed++
			s.Log.Error("merge.failed", "page", stem, "error", err)
			_ = s.Store.Record(ctx, stem, constants.StageMerge, constants.JobStatusFailed, err.Error())
			continue
		}

		stats.Success++
		stats.Entities += len(doc.Form)
		stats.Dangling += dangling
		s.Log.Info("merge.ok", "page", stem, "entities", len(doc.Form))
		_ = s.Store.Record(ctx, stem, constants.StageMerge, constants.JobStatusDone, "")
	}

	if err := s.writeDatasetInfo(); err != nil {
		return stats, err
	}

	stats.LogSummary(s.Log, constants.StageMerge)
	return stats, nil
}

func (s *MergeStage) mergePage(stem, clsFile, outPath string) (annotation.Document, int, error) {
	var cls annotation.ClassificationResult
	if err := annotation.ReadJSON(clsFile, &cls); err != nil {
		return annotation.Document{}, 0, err
	}
	var ocrResult annotation.OCRResult
	if err := annotation.ReadJSON(filepath.Join(s.OCRDir, stem+".json"), &ocrResult); err != nil {
		return annotation.Document{}, 0, err
	}
	var groupingResult annotation.GroupingResult
	if err := annotation.ReadJSON(filepath.Join(s.GroupingDir, stem+".json"), &groupingResult); err != nil {
		return annotation.Document{}, 0, err
	}

	img, ok := findImage(s.ImageDir, stem)
	if !ok {
		return annotation.Document{}, 0, fmt.Errorf("page image not found for %s", stem)
	}

	doc, dangling, err := s.Merger.BuildDocument(img, ocrResult, groupingResult, cls)
	if err != nil {
		return annotation.Document{}, 0, err
	}

	if err := copyFile(img, filepath.Join(s.imagesDir(), filepath.Base(img))); err != nil {
		return annotation.Document{}, 0, fmt.Errorf("copy page image: %w", err)
	}
	if err := annotation.WriteJSON(outPath, doc); err != nil {
		return annotation.Document{}, 0, err
	}

	if s.VisualizeDir != "" {
		overlay := filepath.Join(s.VisualizeDir, stem+"_entities.png")
		if err := visualize.DrawEntities(img, doc, overlay); err != nil {
			s.Log.Warn("merge.visualize_failed", "page", stem, "error", err)
		}
	}
	return doc, dangling, nil
}

// writeDatasetInfo recounts the whole output directory so the companion
// file stays correct across resumed runs.
func (s *MergeStage) writeDatasetInfo() error {
	paths, err := filepath.Glob(filepath.Join(s.annotationsDir(), "*.json"))
	if err != nil {
		return err
	}
	totalEntities := 0
	for _, p := range paths {
		var doc annotation.Document
		if err := annotation.ReadJSON(p, &doc); err != nil {
			return err
		}
		totalEntities += len(doc.Form)
	}
	return funsd.WriteDatasetInfo(s.OutputDir, len(paths), totalEntities)
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
