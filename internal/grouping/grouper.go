// Package grouping implements the third pipeline stage: asking a
// vision-language model to partition a page's OCR fragments into disjoint
// semantic groups.
package grouping

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/bol-annotator/internal/annotation"
	"github.com/joseph-ayodele/bol-annotator/internal/vlm"
)

type Grouper struct {
	client vlm.Client
	logger *slog.Logger
}

func NewGrouper(client vlm.Client, logger *slog.Logger) *Grouper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grouper{client: client, logger: logger}
}

// Group sends the page image plus the serialized fragment list to the VLM
// and returns the partition of fragment IDs. Fragments are never mutated;
// references to IDs that do not exist are tolerated here and dropped at
// merge time.
func (g *Grouper) Group(ctx context.Context, imagePath string, fragments []annotation.Fragment) ([][]int, error) {
	raw, err := g.client.Complete(ctx, imagePath, BuildPrompt(fragments))
	if err != nil {
		return nil, err
	}
	groups, err := ParseResponse(raw)
	if err != nil {
		g.logger.Error("grouping.parse_failed", "image", imagePath, "error", err)
		return nil, err
	}
	return groups, nil
}
