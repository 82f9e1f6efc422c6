// Package annotation defines the data model shared by all pipeline stages:
// OCR fragments, grouping partitions, classification mappings and the final
// FUNSD entities, together with the JSON artifact shapes persisted between
// stages.
package annotation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Box is an axis-aligned rectangle [x_min, y_min, x_max, y_max] in pixel
// space of the rasterized page.
type Box [4]int

func (b Box) Width() int  { return b[2] - b[0] }
func (b Box) Height() int { return b[3] - b[1] }

// Contains reports whether other lies entirely inside b.
func (b Box) Contains(other Box) bool {
	return b[0] <= other[0] && b[1] <= other[1] && b[2] >= other[2] && b[3] >= other[3]
}

// Fragment is the atomic OCR unit: one recognized text span with its
// geometry. Fragment IDs are the 0-based position in OCR emission order and
// are stable for a fixed image and backend. Fragments are immutable once
// produced by the OCR stage.
type Fragment struct {
	ID         int      `json:"id"`
	Text       string   `json:"text"`
	Box        Box      `json:"box"`
	Polygon    [][2]int `json:"polygon"`
	Confidence float64  `json:"confidence"`
}

// LabelID tolerates the stringified integers some models emit in place of
// JSON numbers ({"0": "18"} instead of {"0": 18}).
type LabelID int

func (l *LabelID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("label id %q: %w", string(data), err)
	}
	*l = LabelID(n)
	return nil
}

// OCRResult is the stage-2 artifact, one file per page.
type OCRResult struct {
	ImageName  string     `json:"image_name"`
	ImagePath  string     `json:"image_path"`
	TextBoxes  []Fragment `json:"text_boxes"`
	TotalBoxes int        `json:"total_boxes"`
}

// GroupingResult is the stage-3 artifact: a partition of fragment IDs into
// disjoint semantic groups.
type GroupingResult struct {
	ImageName   string  `json:"image_name"`
	OCRFile     string  `json:"ocr_file"`
	Groups      [][]int `json:"groups"`
	TotalGroups int     `json:"total_groups"`
	TotalBoxes  int     `json:"total_boxes"`
}

// ClassificationResult is the stage-4 artifact: a mapping from group index
// (stringified) to taxonomy label ID.
type ClassificationResult struct {
	ImageName       string             `json:"image_name"`
	OCRFile         string             `json:"ocr_file"`
	GroupingFile    string             `json:"grouping_file"`
	Classifications map[string]LabelID `json:"classifications"`
	LabelMapping    map[string]string  `json:"label_mapping"`
}

// Word is one whitespace-delimited token of a merged entity text with its
// synthesized box.
type Word struct {
	Text string `json:"text"`
	Box  Box    `json:"box"`
}

// Entity is the final output unit, derived from exactly one non-empty
// group. Entities are never mutated after creation.
type Entity struct {
	ID         int     `json:"id"`
	Text       string  `json:"text"`
	Box        Box     `json:"box"`
	Label      string  `json:"label"`
	BOLLabel   string  `json:"bol_label"`
	BOLLabelID int     `json:"bol_label_id"`
	Words      []Word  `json:"words"`
	Linking    [][]int `json:"linking"`
}

// Document is the final per-page FUNSD artifact.
type Document struct {
	Image  string   `json:"image"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Form   []Entity `json:"form"`
}

// DatasetInfo is the companion record written alongside the dataset.
type DatasetInfo struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	TotalImages   int               `json:"total_images"`
	TotalEntities int               `json:"total_entities"`
	Labels        DatasetLabels     `json:"labels"`
	Structure     map[string]string `json:"structure"`
}

// DatasetLabels lists both label spaces of the dataset.
type DatasetLabels struct {
	FUNSDLabels []string          `json:"funsd_labels"`
	BOLLabels   map[string]string `json:"bol_labels"`
}

// MarshalJSON keeps linking as [] rather than null for entities built
// outside BuildForm (hand-written fixtures, older artifacts).
func (e Entity) MarshalJSON() ([]byte, error) {
	type alias Entity
	a := alias(e)
	if a.Linking == nil {
		a.Linking = [][]int{}
	}
	if a.Words == nil {
		a.Words = []Word{}
	}
	return json.Marshal(a)
}
