package vlm

import "strings"

// StripFence normalizes a model response that may be wrapped in a fenced
// code block: if the trimmed response opens with a ``` line, that line is
// removed, and a closing ``` line is removed if present. No other cleanup
// is attempted; callers require the result to parse as JSON and fail
// closed otherwise.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
