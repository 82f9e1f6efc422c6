package grouping

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

const promptTemplate = `## Task: semantic grouping of bill-of-lading text boxes

You are an expert analyst of bill-of-lading (B/L) documents. Analyze the
text boxes recognized in the image (listed below with their IDs) and group
together the boxes that form one semantic unit.

### Grouping rules:
1. Merge parts of one field: company name + address + contact lines belong together
2. Merge value and unit: "1000" + "KGS" belong together
3. Merge port information: port name + city + country belong together
4. Merge related cells of the same table row

### Never merge:
- Logically distinct fields (shipper vs. consignee)
- A label and its value ("Shipper:" caption vs. the actual company name)
- Cells from different table rows

### OCR text boxes:
%s

### Output format:
Return a JSON list of groups, each group listing the text box IDs to merge:
` + "```json" + `
[[0, 1, 2], [3], [4, 5], ...]
` + "```" + `

Return ONLY the JSON array, nothing else.`

// BuildPrompt renders the grouping request for one page. Fragment IDs in
// the listing are the same stable IDs the response must reference.
func BuildPrompt(fragments []annotation.Fragment) string {
	lines := make([]string, 0, len(fragments))
	for _, f := range fragments {
		lines = append(lines, fmt.Sprintf("ID %d: %q", f.ID, f.Text))
	}
	return fmt.Sprintf(promptTemplate, strings.Join(lines, "\n"))
}
