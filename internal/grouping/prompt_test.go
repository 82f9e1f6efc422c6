package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
)

func TestBuildPromptListsEveryFragment(t *testing.T) {
	prompt := BuildPrompt([]annotation.Fragment{
		{ID: 0, Text: "Shipper"},
		{ID: 1, Text: "ABC Co."},
		{ID: 2, Text: `MAERSK "LINE"`},
	})

	assert.Contains(t, prompt, `ID 0: "Shipper"`)
	assert.Contains(t, prompt, `ID 1: "ABC Co."`)
	// quoting keeps embedded quotes unambiguous for the model
	assert.Contains(t, prompt, `ID 2: "MAERSK \"LINE\""`)
	assert.Contains(t, prompt, "Return ONLY the JSON array")
}
