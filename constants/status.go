package constants

// JobStatus is the canonical per-page, per-stage status recorded in the
// job store.
type JobStatus string

// Stable values (stored verbatim).
const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"
	JobStatusFailed  JobStatus = "FAILED"
)

// Pipeline stage names, used as job-store keys and in log events.
const (
	StageRasterize      = "rasterize"
	StageOCR            = "ocr"
	StageGrouping       = "grouping"
	StageClassification = "classification"
	StageMerge          = "merge"
)
