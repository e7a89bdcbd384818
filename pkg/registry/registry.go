// Package registry maps node types to executors and normalizes dispatch.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

// Registry is an explicitly constructed executor set injected into the
// engine. Tests build their own registries of doubles instead of mutating
// shared state.
type Registry struct {
	logger    *slog.Logger
	executors map[string]protocol.Executor
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		executors: make(map[string]protocol.Executor),
	}
}

// Register binds an executor to a node type, replacing any previous binding.
func (r *Registry) Register(nodeType string, executor protocol.Executor) {
	r.executors[nodeType] = executor
}

// Has reports whether an executor is registered for the node type.
func (r *Registry) Has(nodeType string) bool {
	_, ok := r.executors[nodeType]

	return ok
}

// Types returns all registered node types, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.executors))
	for nodeType := range r.executors {
		types = append(types, nodeType)
	}

	sort.Strings(types)

	return types
}

// ValidateFlow combines structural flow validation with per-node config
// schema validation for every node type the registry knows. Node types
// without a registered executor are skipped; ValidateFlow checks shape, not
// executability.
func (r *Registry) ValidateFlow(validate *validator.Validate, flow *models.BotFlow) []models.ValidationError {
	validationErrors := models.ValidateFlow(validate, flow)

	for _, node := range flow.Nodes {
		if !r.Has(node.Type) {
			continue
		}

		if err := r.ValidateConfig(node); err != nil {
			validationErrors = append(validationErrors, models.ValidationError{
				NodeID: node.ID,
				Detail: err.Error(),
			})
		}
	}

	return validationErrors
}

// Dispatch runs the executor registered for the node's type and normalizes
// every failure mode into a NodeResult: unknown types and executor errors
// become failure results, and panics are recovered at this boundary so the
// interpreter never has to.
func (r *Registry) Dispatch(ctx context.Context, node *models.BotNode, input any, execCtx *models.ExecutionContext) (result models.NodeResult) {
	executor, ok := r.executors[node.Type]
	if !ok {
		return models.NodeResult{Success: false, Error: "Unknown node type: " + node.Type}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "Executor panicked",
				"node_id", node.ID, "node_type", node.Type, "panic", rec)

			result = models.NodeResult{Success: false, Error: fmt.Sprintf("executor panic: %v", rec)}
		}
	}()

	output, err := executor.Execute(ctx, node, input, execCtx)
	if err != nil {
		return models.NodeResult{Success: false, Error: err.Error()}
	}

	return models.NodeResult{Success: true, Output: output}
}
