// Package classify implements the fourth pipeline stage: asking a
// vision-language model to assign one taxonomy label to each semantic
// group of a page.
package classify

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
	"github.com/joseph-ayodele/bol-annotator/internal/vlm"
)

type Classifier struct {
	client vlm.Client
	logger *slog.Logger
}

func NewClassifier(client vlm.Client, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{client: client, logger: logger}
}

// Classify sends the page image plus the rendered group list to the VLM in
// one batched request and returns the group-index → label-ID mapping.
// Groups absent from the mapping default to the "other" label at merge
// time.
func (c *Classifier) Classify(ctx context.Context, imagePath string, fragments []annotation.Fragment, groups [][]int) (map[string]annotation.LabelID, error) {
	raw, err := c.client.Complete(ctx, imagePath, BuildPrompt(fragments, groups))
	if err != nil {
		return nil, err
	}
	m, err := ParseResponse(raw)
	if err != nil {
		c.logger.Error("classification.parse_failed", "image", imagePath, "error", err)
		return nil, err
	}
	return m, nil
}
