// Package vlm defines the vision-language model boundary used by the
// grouping and classification stages, plus the response-normalization
// helpers both stages share. The backend is a black box: it takes a page
// image and a structured prompt and returns free text that must be JSON
// after optional fence stripping.
package vlm

import "context"

// Client is the VLM backend contract.
type Client interface {
	Complete(ctx context.Context, imagePath string, prompt string) (string, error)
}
