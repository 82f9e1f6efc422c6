package classify

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/bol-annotator/constants"
	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

const promptTemplate = `## Task: bill-of-lading field classification

You are an expert analyst of bill-of-lading (B/L) documents. The text boxes
in the image have already been grouped into semantic units. Assign each
group the bill-of-lading field type it represents.

### Field types:
%s

### Grouped text:
%s

### Output format:
Return a JSON object mapping group ID (string) to label ID (integer):
` + "```json" + `
{"0": 0, "1": 3, "2": 18, ...}
` + "```" + `

Return ONLY the JSON object, nothing else.`

// labelDescription renders the full taxonomy, one numbered line per label.
func labelDescription() string {
	lines := make([]string, 0, len(constants.BillOfLadingLabels))
	for _, l := range constants.BillOfLadingLabels {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", l.ID, l.Name, l.NameCN))
	}
	return strings.Join(lines, "\n")
}

// GroupText renders one group as its member fragment texts joined with
// single spaces, in group order. IDs with no matching fragment are skipped.
func GroupText(group []int, byID map[int]annotation.Fragment) string {
	texts := make([]string, 0, len(group))
	for _, id := range group {
		if f, ok := byID[id]; ok {
			texts = append(texts, f.Text)
		}
	}
	return strings.Join(texts, " ")
}

// BuildPrompt renders the classification request for one page: the full
// taxonomy plus every group's concatenated text. Groups are classified
// independently but batched into a single request per page.
func BuildPrompt(fragments []annotation.Fragment, groups [][]int) string {
	byID := make(map[int]annotation.Fragment, len(fragments))
	for _, f := range fragments {
		byID[f.ID] = f
	}

	lines := make([]string, 0, len(groups))
	for gi, group := range groups {
		lines = append(lines, fmt.Sprintf("Group %d: %q", gi, GroupText(group, byID)))
	}
	return fmt.Sprintf(promptTemplate, labelDescription(), strings.Join(lines, "\n"))
}
