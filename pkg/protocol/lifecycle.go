package protocol

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
)

// StartExecution carries everything the lifecycle collaborator needs to
// allocate an execution record.
type StartExecution struct {
	AgentID         string
	OrganizationID  string
	TriggeredBy     string
	TriggeredByUser string
	Input           map[string]any
}

// FlowLoader produces the persisted flow graph for an agent. The engine never
// retries a failed load; retries, if desired, are the caller's concern.
type FlowLoader interface {
	LoadFlow(ctx context.Context, agentID string) (*models.BotFlow, error)
}

// Lifecycle persists execution records. The engine awaits every call; a
// StartExecution failure aborts the run before any node executes, a LogNode
// failure is surfaced on the engine's logger but does not stop the run, and
// CompleteExecution is called exactly once per started run.
type Lifecycle interface {
	StartExecution(ctx context.Context, start StartExecution) (string, error)
	LogNode(ctx context.Context, executionID string, entry models.NodeLogEntry) error
	CompleteExecution(ctx context.Context, executionID string, success bool, output any, errMsg string) error
	ExecutionStatus(ctx context.Context, executionID, organizationID string) (*models.Execution, error)
}
