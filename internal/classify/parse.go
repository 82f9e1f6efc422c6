package classify

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
	"github.com/joseph-ayodele/bol-annotator/internal/vlm"
)

// classificationsSchema requires an object whose keys are stringified
// integers and whose values are integers. Keys referencing group indexes
// outside the page's range are a semantic matter left to merge time; a
// non-numeric key is a malformed response.
var classificationsSchema = vlm.MustSchema(map[string]any{
	"type": "object",
	"patternProperties": map[string]any{
		`^\d+$`: map[string]any{"type": "integer"},
	},
	"additionalProperties": false,
})

// ParseResponse turns a raw model reply into the group-index → label-ID
// mapping. Same fence-stripping and fail-closed JSON rules as the grouping
// stage.
func ParseResponse(raw string) (map[string]annotation.LabelID, error) {
	data := []byte(vlm.StripFence(raw))
	if err := classificationsSchema.Validate(data); err != nil {
		return nil, fmt.Errorf("classification: %w", err)
	}

	var m map[string]annotation.LabelID
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("classification: decode: %w", err)
	}
	if m == nil {
		m = map[string]annotation.LabelID{}
	}
	return m, nil
}
