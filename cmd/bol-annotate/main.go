// Command bol-annotate runs the bill-of-lading dataset pipeline: raw
// documents in, FUNSD-format annotations out. Steps are resumable; rerun
// after a failure and only unfinished pages are processed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/joseph-ayodele/bol-annotator/internal/common"
	"github.com/joseph-ayodele/bol-annotator/internal/export"
	"github.com/joseph-ayodele/bol-annotator/internal/jobstore"
	"github.com/joseph-ayodele/bol-annotator/internal/ocr"
	"github.com/joseph-ayodele/bol-annotator/internal/pipeline"
	"github.com/joseph-ayodele/bol-annotator/internal/vlm/openai"
)

func main() {
	var (
		start     = flag.Int("start", pipeline.FirstStep, "first pipeline step to run (1-5)")
		end       = flag.Int("end", pipeline.LastStep, "last pipeline step to run (1-5)")
		dataDir   = flag.String("data", "", "data directory (overrides DATA_DIR)")
		visualize = flag.Bool("visualize", false, "write annotation overlays (overrides VISUALIZE)")
		report    = flag.String("report", "", "write an XLSX dataset report to this path after the merge step")
		debug     = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	// Optional; environment wins over .env.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *start < pipeline.FirstStep || *end > pipeline.LastStep || *start > *end {
		fmt.Fprintf(os.Stderr, "invalid step range %d-%d (steps are %d-%d)\n",
			*start, *end, pipeline.FirstStep, pipeline.LastStep)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *visualize {
		cfg.Pipeline.Visualize = true
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create data directories", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := jobstore.Open(cfg.Paths.JobStore(), logger)
	if err != nil {
		logger.Error("failed to open job store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close job store", "error", err)
		}
	}()

	client := openai.NewClient(openai.Config{
		APIKey:    cfg.API.Key,
		BaseURL:   cfg.API.BaseURL,
		Model:     cfg.API.Model,
		MaxTokens: cfg.API.MaxTokens,
		Timeout:   cfg.API.Timeout,
	}, logger)

	engine := ocr.NewTesseract(ocr.TesseractConfig{
		Language:    cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
	}, logger)

	runner := pipeline.NewRunner(cfg, client, engine, store, logger)

	bar := progressbar.NewOptions(*end-*start+1,
		progressbar.OptionSetDescription("pipeline"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	failedPages := 0
	for step := *start; step <= *end; step++ {
		bar.Describe(pipeline.StepName(step))
		logger.Info("pipeline.step.start", "step", step, "stage", pipeline.StepName(step))

		stats, err := runner.RunStep(ctx, step)
		if err != nil {
			logger.Error("pipeline.step.aborted", "step", step, "stage", pipeline.StepName(step), "error", err)
			os.Exit(1)
		}
		failedPages += stats.Failed
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if *report != "" && *end >= pipeline.StepMerge {
		annotationsDir := filepath.Join(cfg.Paths.FUNSDOutput(), "annotations")
		if err := export.NewService(logger).WriteReport(annotationsDir, *report); err != nil {
			logger.Error("failed to write dataset report", "error", err)
			os.Exit(1)
		}
	}

	if failedPages > 0 {
		logger.Warn("pipeline.finished_with_failures", "failed_pages", failedPages)
		os.Exit(1)
	}
	logger.Info("pipeline.finished")
}
