// Package rasterize converts input documents (PDF, Word, Excel, raster
// images) into per-page PNG files at a fixed DPI. PDF pages are rendered
// with pdftoppm; Office documents go through LibreOffice to PDF first;
// raster images are re-encoded as PNG so every downstream stage sees one
// format.
package rasterize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/bol-annotator/constants"
)

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	Soffice  string // binary name or absolute path; if empty -> "soffice"

	DPI           int  // rasterization DPI, default 300
	OnlyFirstPage bool // process page 1 only
}

type Converter struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewConverter(cfg Config, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Soffice == "" {
		cfg.Soffice = "soffice"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Converter{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Convert renders docPath into outDir as <stem>_page_N.png files and
// returns the created paths in page order.
func (c *Converter) Convert(ctx context.Context, docPath, outDir string) ([]string, error) {
	ext := filepath.Ext(docPath)
	stem := strings.TrimSuffix(filepath.Base(docPath), ext)

	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return c.convertPDF(ctx, docPath, stem, outDir)
	case constants.OFFICE:
		return c.convertOffice(ctx, docPath, stem, outDir)
	case constants.IMAGE:
		return c.convertImage(docPath, stem, outDir)
	default:
		return nil, fmt.Errorf("unsupported extension: %q", ext)
	}
}

func (c *Converter) convertPDF(ctx context.Context, pdfPath, stem, outDir string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "bol-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			c.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(c.cfg.DPI), "-png"}
	if c.cfg.OnlyFirstPage {
		args = append(args, "-f", "1", "-l", "1")
	}
	args = append(args, pdfPath, prefix)

	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	if _, errb, err := c.runner.Run(ctx, c.cfg.Pdftoppm, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images for %s", pdfPath)
	}

	var created []string
	for i, src := range matches {
		dst := filepath.Join(outDir, fmt.Sprintf("%s_page_%d.png", stem, i+1))
		if err := movePage(src, dst); err != nil {
			return created, err
		}
		created = append(created, dst)
	}
	return created, nil
}

func (c *Converter) convertOffice(ctx context.Context, docPath, stem, outDir string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "bol-lo-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			c.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	// soffice --headless --convert-to pdf --outdir <tmp> <doc>
	_, errb, err := c.runner.Run(ctx, c.cfg.Soffice,
		"--headless", "--convert-to", "pdf", "--outdir", tmpDir, docPath)
	if err != nil {
		return nil, fmt.Errorf("soffice: %w (%s)", err, truncate(string(errb), 512))
	}

	pdfPath := filepath.Join(tmpDir, stem+".pdf")
	if _, statErr := os.Stat(pdfPath); statErr != nil {
		return nil, fmt.Errorf("soffice produced no PDF for %s: %v", docPath, statErr)
	}
	return c.convertPDF(ctx, pdfPath, stem, outDir)
}

func (c *Converter) convertImage(imgPath, stem, outDir string) ([]string, error) {
	img, err := imaging.Open(imgPath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	dst := filepath.Join(outDir, stem+"_page_1.png")
	if err := imaging.Save(img, dst); err != nil {
		return nil, fmt.Errorf("save png: %w", err)
	}
	return []string{dst}, nil
}

// movePage renames when possible and falls back to copy for cross-device
// temp dirs.
func movePage(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read page %s: %w", src, err)
	}
	return os.WriteFile(dst, b, 0o644)
}
