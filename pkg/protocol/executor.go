// Package protocol defines the interfaces and contracts between the engine
// and its collaborators.
package protocol

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Executor implements one node type's behavior. Executors are stateless with
// respect to the graph; they may have external side effects, which are not
// retried by the engine.
type Executor interface {
	Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error)
}

// ExecutorFunc adapts a plain function to the Executor interface. Handy for
// tests and custom registries.
type ExecutorFunc func(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error)

func (f ExecutorFunc) Execute(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (any, error) {
	return f(ctx, node, input, execCtx)
}
