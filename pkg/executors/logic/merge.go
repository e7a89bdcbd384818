package logic

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Merge flattens one level of nesting out of branch outputs produced by an
// upstream parallel node. Non-slice inputs pass through unchanged.
type Merge struct{}

func NewMerge() *Merge {
	return &Merge{}
}

func (m *Merge) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	branches, ok := input.([]any)
	if !ok {
		return input, nil
	}

	merged := make([]any, 0, len(branches))

	for _, branch := range branches {
		if nested, ok := branch.([]any); ok {
			merged = append(merged, nested...)

			continue
		}

		merged = append(merged, branch)
	}

	return merged, nil
}
