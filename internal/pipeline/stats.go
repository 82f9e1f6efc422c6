// Package pipeline sequences the five dataset-generation stages over the
// on-disk artifact directories. Every stage is independently resumable:
// a page is skipped when its output artifact already exists, so the
// idempotency key is the output file path.
package pipeline

import "log/slog"

// Stats is the run-level record a stage accumulates. Failures never
// propagate past the per-page boundary; a non-zero Failed count in the
// summary is the user-visible failure signal.
type Stats struct {
	Total   int
	Success int
	Failed  int

	// stage-specific counters
	Pages    int // rasterize: page images created
	Boxes    int // ocr: fragments extracted
	Groups   int // grouping: groups returned
	Entities int // merge: entities emitted
	Dangling int // merge: group references to nonexistent fragment IDs
}

// LogSummary emits the end-of-stage summary line.
func (s Stats) LogSummary(log *slog.Logger, stage string) {
	attrs := []any{
		"stage", stage,
		"total", s.Total,
		"success", s.Success,
		"failed", s.Failed,
	}
	switch {
	case s.Pages > 0:
		attrs = append(attrs, "pages", s.Pages)
	case s.Boxes > 0:
		attrs = append(attrs, "boxes", s.Boxes)
	case s.Groups > 0:
		attrs = append(attrs, "groups", s.Groups)
	}
	if s.Entities > 0 {
		attrs = append(attrs, "entities", s.Entities)
	}
	if s.Dangling > 0 {
		attrs = append(attrs, "dangling_refs", s.Dangling)
	}
	log.Info("pipeline.stage.done", attrs...)
}
