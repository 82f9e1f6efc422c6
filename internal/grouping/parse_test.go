package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	groups, err := ParseResponse(`[[0, 1], [2], [3, 4, 5]]`)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2}, {3, 4, 5}}, groups)
}

func TestParseResponseFenced(t *testing.T) {
	groups, err := ParseResponse("```json\n[[0], [1, 2]]\n```")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1, 2}}, groups)
}

func TestParseResponseEmptyPartition(t *testing.T) {
	groups, err := ParseResponse(`[]`)
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestParseResponseRejectsMalformed(t *testing.T) {
	for name, raw := range map[string]string{
		"prose":           "The groups are [[0,1]] as shown.",
		"object":          `{"groups": [[0, 1]]}`,
		"flat array":      `[0, 1, 2]`,
		"strings inside":  `[["0", "1"]]`,
		"floats inside":   `[[0.5]]`,
		"truncated":       `[[0, 1`,
		"empty response":  ``,
		"fenced non json": "```\nno groups found\n```",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse(raw)
			assert.Error(t, err)
		})
	}
}

func TestParseResponseRejectsOverlap(t *testing.T) {
	_, err := ParseResponse(`[[0, 1], [1, 2]]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fragment 1 appears in groups 0 and 1")
}

func TestParseResponseAllowsUnknownIDs(t *testing.T) {
	// Out-of-range IDs are a merge-time concern, not a parse error.
	groups, err := ParseResponse(`[[999]]`)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{999}}, groups)
}
