package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
	"github.com/joseph-ayodele/bol-annotator/internal/classify"
	"github.com/joseph-ayodele/bol-annotator/internal/funsd"
	"github.com/joseph-ayodele/bol-annotator/internal/grouping"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeVLM returns a canned response and counts invocations.
type fakeVLM struct {
	mu       sync.Mutex
	calls    int
	response string
	fail     map[string]error // keyed by image base name
}

func (f *fakeVLM) Complete(_ context.Context, imagePath, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.fail[filepath.Base(imagePath)]; ok {
		return "", err
	}
	return f.response, nil
}

func (f *fakeVLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeEngine returns fixed fragments and counts invocations.
type fakeEngine struct {
	calls     int
	fragments []annotation.Fragment
}

func (f *fakeEngine) Recognize(_ context.Context, _ string) ([]annotation.Fragment, error) {
	f.calls++
	return f.fragments, nil
}

func writeTestPage(t *testing.T, dir, stem string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, stem+".png")
	require.NoError(t, imaging.Save(imaging.New(200, 100, image.Transparent.C), path))
	return path
}

func testFragments() []annotation.Fragment {
	return []annotation.Fragment{
		{ID: 0, Text: "Shipper", Box: annotation.Box{0, 0, 40, 20},
			Polygon: [][2]int{{0, 0}, {40, 0}, {40, 20}, {0, 20}}, Confidence: 0.95},
		{ID: 1, Text: "ABC Co.", Box: annotation.Box{10, 2, 80, 22},
			Polygon: [][2]int{{10, 2}, {80, 2}, {80, 22}, {10, 22}}, Confidence: 0.91},
	}
}

func writeOCRArtifact(t *testing.T, dir, stem, imagePath string) string {
	t.Helper()
	path := filepath.Join(dir, stem+".json")
	require.NoError(t, annotation.WriteJSON(path, annotation.OCRResult{
		ImageName:  filepath.Base(imagePath),
		ImagePath:  imagePath,
		TextBoxes:  testFragments(),
		TotalBoxes: 2,
	}))
	return path
}

func TestOCRStageIsIdempotent(t *testing.T) {
	root := t.TempDir()
	imageDir, outDir := filepath.Join(root, "images"), filepath.Join(root, "ocr")
	writeTestPage(t, imageDir, "bill_page_1")

	engine := &fakeEngine{fragments: testFragments()}
	stage := &OCRStage{ImageDir: imageDir, OutputDir: outDir, Engine: engine, Log: testLogger()}

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Success: 1, Boxes: 2}, stats)
	assert.Equal(t, 1, engine.calls)

	outPath := filepath.Join(outDir, "bill_page_1.json")
	var result annotation.OCRResult
	require.NoError(t, annotation.ReadJSON(outPath, &result))
	assert.Equal(t, "bill_page_1.png", result.ImageName)
	assert.Equal(t, 2, result.TotalBoxes)

	// second run skips the finished page entirely
	stats, err = stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
	assert.Equal(t, 1, engine.calls)
}

func TestGroupingStageIsIdempotent(t *testing.T) {
	root := t.TempDir()
	imageDir, ocrDir, outDir := filepath.Join(root, "images"), filepath.Join(root, "ocr"), filepath.Join(root, "grouping")
	img := writeTestPage(t, imageDir, "bill_page_1")
	writeOCRArtifact(t, ocrDir, "bill_page_1", img)

	client := &fakeVLM{response: "```json\n[[0, 1]]\n```"}
	stage := &GroupingStage{
		ImageDir: imageDir, OCRDir: ocrDir, OutputDir: outDir,
		Grouper: grouping.NewGrouper(client, testLogger()),
		Log:     testLogger(), BatchSize: 5,
	}

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Success)
	assert.Equal(t, 1, stats.Groups)
	assert.Equal(t, 1, client.callCount())

	outPath := filepath.Join(outDir, "bill_page_1.json")
	var result annotation.GroupingResult
	require.NoError(t, annotation.ReadJSON(outPath, &result))
	assert.Equal(t, [][]int{{0, 1}}, result.Groups)
	assert.Equal(t, 1, result.TotalGroups)
	assert.Equal(t, 2, result.TotalBoxes)

	first, err := os.ReadFile(outPath)
	require.NoError(t, err)

	// resume makes no calls and leaves the artifact byte-identical
	stats, err = stage.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Equal(t, 1, client.callCount())

	second, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGroupingStageIsolatesPageFailures(t *testing.T) {
	root := t.TempDir()
	imageDir, ocrDir, outDir := filepath.Join(root, "images"), filepath.Join(root, "ocr"), filepath.Join(root, "grouping")
	imgA := writeTestPage(t, imageDir, "a_page_1")
	imgB := writeTestPage(t, imageDir, "b_page_1")
	writeOCRArtifact(t, ocrDir, "a_page_1", imgA)
	writeOCRArtifact(t, ocrDir, "b_page_1", imgB)

	client := &fakeVLM{
		response: `[[0], [1]]`,
		fail:     map[string]error{"a_page_1.png": fmt.Errorf("rate limited")},
	}
	stage := &GroupingStage{
		ImageDir: imageDir, OCRDir: ocrDir, OutputDir: outDir,
		Grouper: grouping.NewGrouper(client, testLogger()),
		Log:     testLogger(), BatchSize: 5,
	}

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Success)
	assert.Equal(t, 1, stats.Failed)

	assert.NoFileExists(t, filepath.Join(outDir, "a_page_1.json"))
	assert.FileExists(t, filepath.Join(outDir, "b_page_1.json"))

	// retry picks up only the failed page
	client.fail = nil
	stats, err = stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Success: 1, Groups: 2}, stats)
}

func TestClassificationStage(t *testing.T) {
	root := t.TempDir()
	imageDir := filepath.Join(root, "images")
	ocrDir := filepath.Join(root, "ocr")
	groupingDir := filepath.Join(root, "grouping")
	outDir := filepath.Join(root, "classification")

	img := writeTestPage(t, imageDir, "bill_page_1")
	writeOCRArtifact(t, ocrDir, "bill_page_1", img)
	require.NoError(t, annotation.WriteJSON(filepath.Join(groupingDir, "bill_page_1.json"), annotation.GroupingResult{
		ImageName: "bill_page_1.png", OCRFile: "bill_page_1.json",
		Groups: [][]int{{0, 1}}, TotalGroups: 1, TotalBoxes: 2,
	}))

	client := &fakeVLM{response: `{"0": 0}`}
	stage := &ClassificationStage{
		ImageDir: imageDir, OCRDir: ocrDir, GroupingDir: groupingDir, OutputDir: outDir,
		Classifier: classify.NewClassifier(client, testLogger()),
		Log:        testLogger(), BatchSize: 5,
	}

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Success)

	var result annotation.ClassificationResult
	require.NoError(t, annotation.ReadJSON(filepath.Join(outDir, "bill_page_1.json"), &result))
	assert.Equal(t, annotation.LabelID(0), result.Classifications["0"])
	assert.Equal(t, "shipper", result.LabelMapping["0"])
	assert.Equal(t, "bl_no", result.LabelMapping["18"])
	assert.Equal(t, "bill_page_1.json", result.GroupingFile)
}

func TestMergeStage(t *testing.T) {
	root := t.TempDir()
	imageDir := filepath.Join(root, "images")
	ocrDir := filepath.Join(root, "ocr")
	groupingDir := filepath.Join(root, "grouping")
	clsDir := filepath.Join(root, "classification")
	outDir := filepath.Join(root, "funsd")

	img := writeTestPage(t, imageDir, "bill_page_1")
	writeOCRArtifact(t, ocrDir, "bill_page_1", img)
	require.NoError(t, annotation.WriteJSON(filepath.Join(groupingDir, "bill_page_1.json"), annotation.GroupingResult{
		ImageName: "bill_page_1.png", Groups: [][]int{{0, 1}}, TotalGroups: 1, TotalBoxes: 2,
	}))
	require.NoError(t, annotation.WriteJSON(filepath.Join(clsDir, "bill_page_1.json"), annotation.ClassificationResult{
		ImageName:       "bill_page_1.png",
		Classifications: map[string]annotation.LabelID{"0": 0},
	}))

	stage := &MergeStage{
		ImageDir: imageDir, OCRDir: ocrDir, GroupingDir: groupingDir,
		ClassificationDir: clsDir, OutputDir: outDir,
		Merger: funsd.NewMerger(testLogger()), Log: testLogger(),
	}

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Success)
	assert.Equal(t, 1, stats.Entities)
	assert.Zero(t, stats.Dangling)

	var doc annotation.Document
	require.NoError(t, annotation.ReadJSON(filepath.Join(outDir, "annotations", "bill_page_1.json"), &doc))
	assert.Equal(t, "bill_page_1.png", doc.Image)
	assert.Equal(t, 200, doc.Width)
	assert.Equal(t, 100, doc.Height)
	require.Len(t, doc.Form, 1)
	assert.Equal(t, "Shipper ABC Co.", doc.Form[0].Text)
	assert.Equal(t, "shipper", doc.Form[0].BOLLabel)
	assert.Equal(t, annotation.Box{0, 0, 80, 22}, doc.Form[0].Box)

	assert.FileExists(t, filepath.Join(outDir, "images", "bill_page_1.png"))

	var info annotation.DatasetInfo
	require.NoError(t, annotation.ReadJSON(filepath.Join(outDir, "dataset_info.json"), &info))
	assert.Equal(t, 1, info.TotalImages)
	assert.Equal(t, 1, info.TotalEntities)
	assert.Equal(t, "shipper", info.Labels.BOLLabels["0"])

	// resume skips the merged page
	stats, err = stage.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestMergeStageToleratesDanglingGroups(t *testing.T) {
	root := t.TempDir()
	imageDir := filepath.Join(root, "images")
	ocrDir := filepath.Join(root, "ocr")
	groupingDir := filepath.Join(root, "grouping")
	clsDir := filepath.Join(root, "classification")
	outDir := filepath.Join(root, "funsd")

	img := writeTestPage(t, imageDir, "bill_page_1")
	writeOCRArtifact(t, ocrDir, "bill_page_1", img)
	require.NoError(t, annotation.WriteJSON(filepath.Join(groupingDir, "bill_page_1.json"), annotation.GroupingResult{
		Groups: [][]int{{5}}, TotalGroups: 1, TotalBoxes: 2,
	}))
	require.NoError(t, annotation.WriteJSON(filepath.Join(clsDir, "bill_page_1.json"), annotation.ClassificationResult{
		Classifications: map[string]annotation.LabelID{},
	}))

	stage := &MergeStage{
		ImageDir: imageDir, OCRDir: ocrDir, GroupingDir: groupingDir,
		ClassificationDir: clsDir, OutputDir: outDir,
		Merger: funsd.NewMerger(testLogger()), Log: testLogger(),
	}

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Success)
	assert.Zero(t, stats.Entities)
	assert.Equal(t, 1, stats.Dangling)

	var doc annotation.Document
	require.NoError(t, annotation.ReadJSON(filepath.Join(outDir, "annotations", "bill_page_1.json"), &doc))
	assert.Empty(t, doc.Form)
}

func TestRunBatchesPacesAndCounts(t *testing.T) {
	tasks := make([]vlmTask, 7)
	for i := range tasks {
		tasks[i] = vlmTask{Stem: fmt.Sprintf("p%d", i)}
	}

	var mu sync.Mutex
	processed := 0
	success, failed := runBatches(context.Background(), testLogger(), tasks, 3, 0,
		func(_ context.Context, t vlmTask) error {
			mu.Lock()
			processed++
			mu.Unlock()
			if t.Stem == "p4" {
				return fmt.Errorf("boom")
			}
			return nil
		})

	assert.Equal(t, 7, processed)
	assert.Equal(t, 6, success)
	assert.Equal(t, 1, failed)
}

func TestRunBatchesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tasks := make([]vlmTask, 6)

	var mu sync.Mutex
	processed := 0
	success, failed := runBatches(ctx, testLogger(), tasks, 2, time.Hour,
		func(_ context.Context, _ vlmTask) error {
			mu.Lock()
			processed++
			mu.Unlock()
			cancel() // stop after the first batch
			return nil
		})

	// first batch runs immediately; the hour-long refill never elapses
	assert.Equal(t, 2, processed)
	assert.Equal(t, 2, success)
	assert.Equal(t, 4, failed)
}
