package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/jobstore"
	"github.com/joseph-ayodele/bol-annotator/internal/rasterize"
)

// RasterizeStage converts every raw document into per-page PNG images.
// A document is skipped when its first page image already exists; the
// document stem is the resume key for multi-page documents too, since
// pages of one document are always produced together.
type RasterizeStage struct {
	InputDir  string
	OutputDir string
	Converter *rasterize.Converter
	Store     *jobstore.Store
	Log       *slog.Logger
}

func (s *RasterizeStage) Run(ctx context.Context) (Stats, error) {
	docs, err := listByExt(s.InputDir, constants.DocumentExtensions)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stem := strings.TrimSuffix(filepath.Base(doc), filepath.Ext(doc))
		firstPage := filepath.Join(s.OutputDir, stem+"_page_1.png")
		if exists(firstPage) {
			s.Log.Debug("rasterize.skip_existing", "doc", filepath.Base(doc))
			continue
		}
		stats.Total++

		_ = s.Store.Record(ctx, stem, constants.StageRasterize, constants.JobStatusRunning, "")
		pages, err := s.Converter.Convert(ctx, doc, s.OutputDir)
		if err != nil {
			stats.Failed++
			s.Log.Error("rasterize.failed", "doc", filepath.Base(doc), "error", err)
			_ = s.Store.Record(ctx, stem, constants.StageRasterize, constants.JobStatusFailed, err.Error())
			continue
		}

		stats.Success++
		stats.Pages += len(pages)
		s.Log.Info("rasterize.ok", "doc", filepath.Base(doc), "pages", len(pages))
		_ = s.Store.Record(ctx, stem, constants.StageRasterize, constants.JobStatusDone, "")
	}

	stats.LogSummary(s.Log, constants.StageRasterize)
	return stats, nil
}
