package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

func TestGroupText(t *testing.T) {
	byID := map[int]annotation.Fragment{
		0: {ID: 0, Text: "Shipper"},
		1: {ID: 1, Text: "ABC Co."},
	}
	assert.Equal(t, "Shipper ABC Co.", GroupText([]int{0, 1}, byID))
	assert.Equal(t, "ABC Co. Shipper", GroupText([]int{1, 0}, byID), "group order wins")
	assert.Equal(t, "Shipper", GroupText([]int{0, 9}, byID), "unknown IDs are skipped")
	assert.Equal(t, "", GroupText(nil, byID))
}

func TestBuildPromptListsTaxonomyAndGroups(t *testing.T) {
	fragments := []annotation.Fragment{
		{ID: 0, Text: "BL-123456"},
		{ID: 1, Text: "Port of Shanghai"},
	}
	prompt := BuildPrompt(fragments, [][]int{{0}, {1}})

	assert.Contains(t, prompt, `Group 0: "BL-123456"`)
	assert.Contains(t, prompt, `Group 1: "Port of Shanghai"`)
	assert.Contains(t, prompt, "0. shipper")
	assert.Contains(t, prompt, "18. bl_no")
	assert.Contains(t, prompt, "28. abandon")
	assert.Contains(t, prompt, "Return ONLY the JSON object")
}
