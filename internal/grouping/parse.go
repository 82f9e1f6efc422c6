package grouping

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/bol-annotator/internal/vlm"
)

// groupsSchema is the structural contract for a grouping response: an
// array of arrays of integers, nothing looser.
var groupsSchema = vlm.MustSchema(map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "integer"},
	},
})

// ParseResponse turns a raw model reply into a grouping partition. The
// reply may be wrapped in a single fenced code block; after stripping it
// must be a JSON array of arrays of integers. A fragment ID appearing in
// two groups makes the whole response malformed: groups must partition the
// fragment space, and accepting an overlap here would silently double-count
// the fragment downstream.
func ParseResponse(raw string) ([][]int, error) {
	data := []byte(vlm.StripFence(raw))
	if err := groupsSchema.Validate(data); err != nil {
		return nil, fmt.Errorf("grouping: %w", err)
	}

	var groups [][]int
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("grouping: decode: %w", err)
	}

	seen := make(map[int]int, 64)
	for gi, group := range groups {
		for _, id := range group {
			if prev, ok := seen[id]; ok {
				return nil, fmt.Errorf("grouping: fragment %d appears in groups %d and %d", id, prev, gi)
			}
			seen[id] = gi
		}
	}

	if groups == nil {
		groups = [][]int{}
	}
	return groups, nil
}
