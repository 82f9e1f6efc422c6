// Package funsd merges OCR geometry, the grouping partition and the
// classification mapping into final FUNSD entities: one merged bounding
// box and concatenated text per group, with a synthesized word-level
// decomposition.
package funsd

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

// MergeFragments concatenates member texts with single spaces in group
// order and computes the strict bounding-box union: the smallest
// axis-aligned rectangle covering every member box. The union is
// deliberately conservative so no member fragment ever lies outside the
// merged box.
func MergeFragments(members []annotation.Fragment) (string, annotation.Box) {
	texts := make([]string, 0, len(members))
	box := members[0].Box
	for _, f := range members {
		texts = append(texts, f.Text)
		if f.Box[0] < box[0] {
			box[0] = f.Box[0]
		}
		if f.Box[1] < box[1] {
			box[1] = f.Box[1]
		}
		if f.Box[2] > box[2] {
			box[2] = f.Box[2]
		}
		if f.Box[3] > box[3] {
			box[3] = f.Box[3]
		}
	}
	return strings.Join(texts, " "), box
}

// SplitWords decomposes merged text into per-word boxes using a uniform
// character-width estimate: each word gets a horizontal span proportional
// to its character count, advancing a cursor left to right from the merged
// box's x_min, with one character width of gap between words. All word
// boxes share the merged box's vertical extent. This is an approximation;
// downstream consumers only need coarse word positions.
func SplitWords(text string, box annotation.Box) []annotation.Word {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return []annotation.Word{{Text: "", Box: box}}
	}

	charWidth := float64(box.Width()) / float64(max(utf8.RuneCountInString(text), 1))
	cursor := float64(box[0])

	words := make([]annotation.Word, 0, len(parts))
	for _, part := range parts {
		w := float64(utf8.RuneCountInString(part)) * charWidth
		wordBox := annotation.Box{int(cursor), box[1], int(cursor + w), box[3]}
		if wordBox[2] > box[2] {
			wordBox[2] = box[2]
		}
		if wordBox[0] > wordBox[2] {
			wordBox[0] = wordBox[2]
		}
		words = append(words, annotation.Word{Text: part, Box: wordBox})
		cursor += w + charWidth
	}
	return words
}

// BuildForm derives the final entity list. Per group: resolve member
// fragments by ID (references to nonexistent IDs are excluded and counted,
// not fatal — partial annotation beats discarding the page), skip groups
// left empty, merge text and geometry, resolve the classification (default
// label 27 on a missing key), and synthesize word boxes. Entity IDs are
// compacted to 0..K-1 over the K surviving groups in original group order.
func BuildForm(fragments []annotation.Fragment, groups [][]int, classifications map[string]annotation.LabelID) (form []annotation.Entity, dangling int) {
	byID := make(map[int]annotation.Fragment, len(fragments))
	for _, f := range fragments {
		byID[f.ID] = f
	}

	form = make([]annotation.Entity, 0, len(groups))
	for gi, group := range groups {
		members := make([]annotation.Fragment, 0, len(group))
		for _, id := range group {
			f, ok := byID[id]
			if !ok {
				dangling++
				continue
			}
			members = append(members, f)
		}
		if len(members) == 0 {
			continue
		}

		text, box := MergeFragments(members)

		labelID := constants.DefaultLabelID
		if v, ok := classifications[strconv.Itoa(gi)]; ok {
			labelID = int(v)
		}

		form = append(form, annotation.Entity{
			ID:         len(form),
			Text:       text,
			Box:        box,
			Label:      constants.FUNSDLabel(labelID),
			BOLLabel:   constants.NameByID(labelID),
			BOLLabelID: labelID,
			Words:      SplitWords(text, box),
			Linking:    [][]int{},
		})
	}
	return form, dangling
}
