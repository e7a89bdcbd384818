// Package events defines event types emitted over the execution lifecycle.
// The activity feed and usage metering collaborators consume these.
package events

import "time"

type EventType string

// Topic carries all execution lifecycle events.
const Topic = "flowbot.executions"

const EventKeyMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent  EventType = "execution.started"
	ExecutionFinishedEvent EventType = "execution.finished"
	ExecutionFailedEvent   EventType = "execution.failed"
	NodeCompletedEvent     EventType = "node.completed"
)

// Event is implemented by every lifecycle event.
type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	AgentID        string    `json:"agent_id"`
	OrganizationID string    `json:"organization_id"`
	ExecutionID    string    `json:"execution_id"`
}

type ExecutionStarted struct {
	BaseEvent

	TriggeredBy string         `json:"triggered_by"`
	Input       map[string]any `json:"input,omitempty"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionFinished struct {
	BaseEvent

	Output        any           `json:"output,omitempty"`
	NodesExecuted int           `json:"nodes_executed"`
	Duration      time.Duration `json:"duration"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}

type ExecutionFailed struct {
	BaseEvent

	Error         string        `json:"error"`
	NodesExecuted int           `json:"nodes_executed"`
	Duration      time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type NodeCompleted struct {
	BaseEvent

	NodeID     string `json:"node_id"`
	NodeType   string `json:"node_type"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

func (e NodeCompleted) GetType() EventType {
	return NodeCompletedEvent
}
