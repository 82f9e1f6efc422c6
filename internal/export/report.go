// Package export produces an XLSX summary workbook over a generated
// dataset: one row per entity plus a per-label distribution sheet, for
// eyeballing annotation quality without loading the JSON.
package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

// Service renders dataset reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteReport reads every annotation document under annotationsDir and
// writes the workbook to outPath.
func (s *Service) WriteReport(annotationsDir, outPath string) error {
	start := time.Now()

	paths, err := filepath.Glob(filepath.Join(annotationsDir, "*.json"))
	if err != nil {
		return fmt.Errorf("scan annotations: %w", err)
	}
	sort.Strings(paths)

	docs := make([]annotation.Document, 0, len(paths))
	for _, p := range paths {
		var doc annotation.Document
		if err := annotation.ReadJSON(p, &doc); err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	b, err := buildWorkbook(docs)
	if err != nil {
		return err
	}
	if err := b.SaveAs(outPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	s.logger.Info("export.report.ok",
		"annotations", len(docs),
		"out", outPath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func buildWorkbook(docs []annotation.Document) (*excelize.File, error) {
	f := excelize.NewFile()

	const entities = "Entities"
	if err := f.SetSheetName("Sheet1", entities); err != nil {
		return nil, err
	}

	headers := []string{"Image", "Entity ID", "Text", "Fine Label", "Coarse Label", "X Min", "Y Min", "X Max", "Y Max"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(entities, cell, h)
	}

	labelCounts := map[string]int{}
	row := 2
	for _, doc := range docs {
		for _, e := range doc.Form {
			values := []any{doc.Image, e.ID, e.Text, e.BOLLabel, e.Label, e.Box[0], e.Box[1], e.Box[2], e.Box[3]}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(entities, cell, v)
			}
			labelCounts[e.BOLLabel]++
			row++
		}
	}

	const labels = "Labels"
	if _, err := f.NewSheet(labels); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(labels, "A1", "Fine Label")
	_ = f.SetCellValue(labels, "B1", "Entities")

	names := make([]string, 0, len(labelCounts))
	for name := range labelCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		_ = f.SetCellValue(labels, fmt.Sprintf("A%d", i+2), name)
		_ = f.SetCellValue(labels, fmt.Sprintf("B%d", i+2), labelCounts[name])
	}

	return f, nil
}
