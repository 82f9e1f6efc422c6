package funsd

import (
	"path/filepath"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

// WriteDatasetInfo records the dataset companion file: totals plus the
// full label taxonomy, so the dataset is self-describing.
func WriteDatasetInfo(outputDir string, totalImages, totalEntities int) error {
	info := annotation.DatasetInfo{
		Name:          "Bill of Lading FUNSD Dataset",
		Description:   "Bill-of-lading key-field dataset in FUNSD format",
		TotalImages:   totalImages,
		TotalEntities: totalEntities,
		Labels: annotation.DatasetLabels{
			FUNSDLabels: constants.FUNSDLabels,
			BOLLabels:   constants.IDToNameMapping(),
		},
		Structure: map[string]string{
			"images/":      "page images",
			"annotations/": "per-page JSON annotations",
		},
	}
	return annotation.WriteJSON(filepath.Join(outputDir, "dataset_info.json"), info)
}
