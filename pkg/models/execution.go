package models

import (
	"sync"
	"time"
)

// ExecutionStatus is the lifecycle state of a persisted execution record.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// NodeLogStatus is the per-node outcome recorded in the execution log.
type NodeLogStatus string

const (
	NodeLogStatusSuccess NodeLogStatus = "success"
	NodeLogStatusFailed  NodeLogStatus = "failed"
)

// Execution is the persisted record of one engine run, owned by the
// lifecycle collaborator.
type Execution struct {
	ID              string          `json:"id"`
	AgentID         string          `json:"agent_id"`
	OrganizationID  string          `json:"organization_id"`
	TriggeredBy     string          `json:"triggered_by"`
	TriggeredByUser string          `json:"triggered_by_user,omitempty"`
	Status          ExecutionStatus `json:"status"`
	Input           map[string]any  `json:"input,omitempty"`
	Output          any             `json:"output,omitempty"`
	Error           string          `json:"error,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	Log             []NodeLogEntry  `json:"log,omitempty"`
}

// NodeLogEntry records the outcome of one node visit.
type NodeLogEntry struct {
	NodeID   string        `json:"node_id"`
	Status   NodeLogStatus `json:"status"`
	Output   any           `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	LoggedAt time.Time     `json:"logged_at"`
}

// NodeResult is the normalized outcome of a single executor invocation.
type NodeResult struct {
	Success bool   `json:"success"`
	Output  any    `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ExecutionResult is the engine-level return of one Execute call. Immutable
// once returned.
type ExecutionResult struct {
	Success         bool   `json:"success"`
	ExecutionID     string `json:"execution_id,omitempty"`
	Output          any    `json:"output,omitempty"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	NodesExecuted   int    `json:"nodes_executed"`
}

// ExecutionContext is the in-memory state of one engine invocation. It is
// owned by a single run and never shared across concurrent executions.
// NodeOutputs is written from parallel branches, so access goes through
// the mutex-guarded accessors.
type ExecutionContext struct {
	ExecutionID    string         `json:"execution_id"`
	AgentID        string         `json:"agent_id"`
	OrganizationID string         `json:"organization_id"`
	UserID         string         `json:"user_id,omitempty"`
	Variables      map[string]any `json:"variables,omitempty"`

	mu          sync.Mutex
	nodeOutputs map[string]any
}

// NewExecutionContext seeds a context from the initial input payload.
func NewExecutionContext(executionID, agentID, organizationID, userID string, input map[string]any) *ExecutionContext {
	variables := make(map[string]any, len(input))
	for k, v := range input {
		variables[k] = v
	}

	return &ExecutionContext{
		ExecutionID:    executionID,
		AgentID:        agentID,
		OrganizationID: organizationID,
		UserID:         userID,
		Variables:      variables,
		nodeOutputs:    make(map[string]any),
	}
}

// SetNodeOutput records a node's output. Safe for concurrent branches.
func (c *ExecutionContext) SetNodeOutput(nodeID string, output any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nodeOutputs[nodeID] = output
}

// NodeOutput returns the recorded output of a previously executed node.
func (c *ExecutionContext) NodeOutput(nodeID string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	output, ok := c.nodeOutputs[nodeID]

	return output, ok
}

// NodeOutputs returns a copy of all recorded node outputs.
func (c *ExecutionContext) NodeOutputs() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	outputs := make(map[string]any, len(c.nodeOutputs))
	for k, v := range c.nodeOutputs {
		outputs[k] = v
	}

	return outputs
}
