package logic

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Parallel passes its input through unchanged. The fan-out over outgoing
// edges is performed by the engine, which hands the same output to every
// branch and aggregates their results in edge order.
type Parallel struct{}

func NewParallel() *Parallel {
	return &Parallel{}
}

func (p *Parallel) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	return input, nil
}
