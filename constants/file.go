package constants

import "strings"

// Document format families handled by the pipeline.
const (
	PDF    = "PDF"
	OFFICE = "OFFICE"
	IMAGE  = "IMAGE"
)

// ImageExtensions is the probe order used when resolving a page image from
// an artifact stem.
var ImageExtensions = []string{".png", ".jpg", ".jpeg"}

// ScanImageExtensions covers everything the OCR stage will pick up from the
// images directory.
var ScanImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff"}

// DocumentExtensions covers everything the rasterize stage will pick up from
// the raw documents directory.
var DocumentExtensions = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx",
	".png", ".jpg", ".jpeg", ".bmp", ".tiff",
}

var extToFormat = map[string]string{
	"pdf":  PDF,
	"doc":  OFFICE,
	"docx": OFFICE,
	"xls":  OFFICE,
	"xlsx": OFFICE,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"bmp":  IMAGE,
	"tiff": IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its format family, or "" when the
// extension is unsupported.
func MapExtToFormat(ext string) string {
	return extToFormat[NormalizeExt(ext)]
}
