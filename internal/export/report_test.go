package export

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	annotationsDir := filepath.Join(dir, "annotations")

	require.NoError(t, annotation.WriteJSON(filepath.Join(annotationsDir, "a_page_1.json"), annotation.Document{
		Image: "a_page_1.png", Width: 200, Height: 100,
		Form: []annotation.Entity{
			{ID: 0, Text: "ABC Co.", Box: annotation.Box{0, 0, 80, 22}, Label: "answer", BOLLabel: "shipper", BOLLabelID: 0},
			{ID: 1, Text: "BL-123", Box: annotation.Box{100, 0, 200, 20}, Label: "answer", BOLLabel: "bl_no", BOLLabelID: 18},
		},
	}))
	require.NoError(t, annotation.WriteJSON(filepath.Join(annotationsDir, "b_page_1.json"), annotation.Document{
		Image: "b_page_1.png", Width: 200, Height: 100,
		Form: []annotation.Entity{
			{ID: 0, Text: "XYZ Ltd.", Box: annotation.Box{0, 0, 90, 20}, Label: "answer", BOLLabel: "shipper", BOLLabelID: 0},
		},
	}))

	outPath := filepath.Join(dir, "report.xlsx")
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, svc.WriteReport(annotationsDir, outPath))

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Entities")
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 entities
	assert.Equal(t, "Image", rows[0][0])
	assert.Equal(t, "a_page_1.png", rows[1][0])
	assert.Equal(t, "ABC Co.", rows[1][2])
	assert.Equal(t, "shipper", rows[1][3])
	assert.Equal(t, "bl_no", rows[2][3])
	assert.Equal(t, "b_page_1.png", rows[3][0])

	labelRows, err := f.GetRows("Labels")
	require.NoError(t, err)
	require.Len(t, labelRows, 3) // header + bl_no + shipper (sorted)
	assert.Equal(t, []string{"bl_no", "1"}, labelRows[1][:2])
	assert.Equal(t, []string{"shipper", "2"}, labelRows[2][:2])
}

func TestWriteReportEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "report.xlsx")
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, svc.WriteReport(filepath.Join(dir, "annotations"), outPath))
	assert.FileExists(t, outPath)
}
