package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/classify"
	"github.com/joseph-ayodele/bol-annotator/internal/common"
	"github.com/joseph-ayodele/bol-annotator/internal/funsd"
	"github.com/joseph-ayodele/bol-annotator/internal/grouping"
	"github.com/joseph-ayodele/bol-annotator/internal/jobstore"
	"github.com/joseph-ayodele/bol-annotator/internal/ocr"
	"github.com/joseph-ayodele/bol-annotator/internal/rasterize"
	"github.com/joseph-ayodele/bol-annotator/internal/vlm"
)

// Pipeline step numbers, in execution order.
const (
	StepRasterize      = 1
	StepOCR            = 2
	StepGrouping       = 3
	StepClassification = 4
	StepMerge          = 5

	FirstStep = StepRasterize
	LastStep  = StepMerge
)

// StepName returns the stage name for a step number.
func StepName(step int) string {
	switch step {
	case StepRasterize:
		return constants.StageRasterize
	case StepOCR:
		return constants.StageOCR
	case StepGrouping:
		return constants.StageGrouping
	case StepClassification:
		return constants.StageClassification
	case StepMerge:
		return constants.StageMerge
	default:
		return fmt.Sprintf("step_%d", step)
	}
}

// Runner wires the five stages over one configuration and drives them by
// step number.
type Runner struct {
	cfg    *common.Config
	client vlm.Client
	engine ocr.Engine
	store  *jobstore.Store
	log    *slog.Logger
}

func NewRunner(cfg *common.Config, client vlm.Client, engine ocr.Engine, store *jobstore.Store, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, client: client, engine: engine, store: store, log: log}
}

// RunStep executes one pipeline step. VLM-backed steps validate the API
// configuration first so a missing key aborts the stage instead of failing
// every page.
func (r *Runner) RunStep(ctx context.Context, step int) (Stats, error) {
	paths := r.cfg.Paths
	visualizeDir := ""
	if r.cfg.Pipeline.Visualize {
		visualizeDir = paths.Visualizations()
	}

	switch step {
	case StepRasterize:
		stage := &RasterizeStage{
			InputDir:  paths.InputDocuments(),
			OutputDir: paths.Images(),
			Converter: rasterize.NewConverter(rasterize.Config{
				Pdftoppm:      r.cfg.Rasterize.Pdftoppm,
				Soffice:       r.cfg.Rasterize.Soffice,
				DPI:           r.cfg.Rasterize.DPI,
				OnlyFirstPage: r.cfg.Rasterize.OnlyFirstPage,
			}, r.log),
			Store: r.store,
			Log:   r.log,
		}
		return stage.Run(ctx)

	case StepOCR:
		stage := &OCRStage{
			ImageDir:     paths.Images(),
			OutputDir:    paths.OCRResults(),
			VisualizeDir: visualizeDir,
			Engine:       r.engine,
			Store:        r.store,
			Log:          r.log,
		}
		return stage.Run(ctx)

	case StepGrouping:
		if err := r.cfg.Validate(); err != nil {
			return Stats{}, err
		}
		stage := &GroupingStage{
			ImageDir:  paths.Images(),
			OCRDir:    paths.OCRResults(),
			OutputDir: paths.Grouping(),
			Grouper:   grouping.NewGrouper(r.client, r.log),
			Store:     r.store,
			Log:       r.log,
			BatchSize: r.cfg.Pipeline.BatchSize,
			Interval:  r.cfg.Pipeline.Interval,
		}
		return stage.Run(ctx)

	case StepClassification:
		if err := r.cfg.Validate(); err != nil {
			return Stats{}, err
		}
		stage := &ClassificationStage{
			ImageDir:    paths.Images(),
			OCRDir:      paths.OCRResults(),
			GroupingDir: paths.Grouping(),
			OutputDir:   paths.Classification(),
			Classifier:  classify.NewClassifier(r.client, r.log),
			Store:       r.store,
			Log:         r.log,
			BatchSize:   r.cfg.Pipeline.BatchSize,
			Interval:    r.cfg.Pipeline.Interval,
		}
		return stage.Run(ctx)

	case StepMerge:
		stage := &MergeStage{
			ImageDir:          paths.Images(),
			OCRDir:            paths.OCRResults(),
			GroupingDir:       paths.Grouping(),
			ClassificationDir: paths.Classification(),
			OutputDir:         paths.FUNSDOutput(),
			VisualizeDir:      visualizeDir,
			Merger:            funsd.NewMerger(r.log),
			Store:             r.store,
			Log:               r.log,
		}
		return stage.Run(ctx)

	default:
		return Stats{}, common.NewAppError("PIPELINE_ERROR",
			fmt.Sprintf("unknown pipeline step %d", step), common.ErrInvalidInput)
	}
}
