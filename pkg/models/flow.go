// Package models defines the core domain models for bot flow execution.
package models

import "strings"

// TriggerPrefix marks node types that can start an execution.
const TriggerPrefix = "trigger_"

// Built-in trigger node types.
const (
	NodeTypeTriggerWebhook  = "trigger_webhook"
	NodeTypeTriggerSchedule = "trigger_schedule"
	NodeTypeTriggerEvent    = "trigger_event"
	NodeTypeTriggerEmail    = "trigger_email"
	NodeTypeTriggerForm     = "trigger_form"
)

// Built-in action node types.
const (
	NodeTypeActionAIResponse       = "action_ai_response"
	NodeTypeActionAPICall          = "action_api_call"
	NodeTypeActionSendEmail        = "action_send_email"
	NodeTypeActionSendNotification = "action_send_notification"
	NodeTypeActionCreateTask       = "action_create_task"
	NodeTypeActionUpdateDB         = "action_update_db"
	NodeTypeActionRAGSearch        = "action_rag_search"
)

// Built-in logic node types. Condition, switch and parallel are interpreted
// specially by the engine; the rest execute like plain nodes.
const (
	NodeTypeLogicCondition = "logic_condition"
	NodeTypeLogicSwitch    = "logic_switch"
	NodeTypeLogicLoop      = "logic_loop"
	NodeTypeLogicDelay     = "logic_delay"
	NodeTypeLogicParallel  = "logic_parallel"
	NodeTypeLogicMerge     = "logic_merge"
)

// Built-in transform node types.
const (
	NodeTypeTransformData      = "transform_data"
	NodeTypeTransformFilter    = "transform_filter"
	NodeTypeTransformAggregate = "transform_aggregate"
)

// Edge selector tags used by conditional branching.
const (
	EdgeTagTrue    = "true"
	EdgeTagFalse   = "false"
	EdgeTagDefault = "default"
)

// Position holds canvas coordinates for the flow editor. It is carried
// through unchanged and ignored by the engine.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData holds the editor-facing data of a node. Config is the only part
// the matching executor consumes.
type NodeData struct {
	Label  string         `json:"label,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}

// BotNode is a single step in a flow. Read-only during execution.
type BotNode struct {
	ID       string   `json:"id"   validate:"required"`
	Type     string   `json:"type" validate:"required"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// IsTrigger reports whether the node can start an execution.
func (n *BotNode) IsTrigger() bool {
	return strings.HasPrefix(n.Type, TriggerPrefix)
}

// Config returns the node configuration, never nil.
func (n *BotNode) Config() map[string]any {
	if n.Data.Config == nil {
		return map[string]any{}
	}

	return n.Data.Config
}

// BotEdge is a directed connection between two nodes. SourceHandle names the
// output port the edge leaves from; when absent, Label may serve as the
// branch selector.
type BotEdge struct {
	ID           string `json:"id"     validate:"required"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Label        string `json:"label,omitempty"`
}

// Selector returns the branch selector of the edge: SourceHandle when set,
// otherwise Label.
func (e *BotEdge) Selector() string {
	if e.SourceHandle != "" {
		return e.SourceHandle
	}

	return e.Label
}

// BotFlow is the complete persisted graph of one agent's automation. Loaded
// fresh per execution; the engine never caches it.
type BotFlow struct {
	Nodes []*BotNode `json:"nodes"`
	Edges []*BotEdge `json:"edges"`
}

// NodeByID returns the node with the given id, or nil.
func (f *BotFlow) NodeByID(id string) *BotNode {
	for _, node := range f.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// FirstTrigger returns the first trigger node in array order, or nil when
// the flow has none.
func (f *BotFlow) FirstTrigger() *BotNode {
	for _, node := range f.Nodes {
		if node.IsTrigger() {
			return node
		}
	}

	return nil
}

// OutgoingEdges builds the adjacency list from edges, preserving edge order
// per source node.
func (f *BotFlow) OutgoingEdges() map[string][]*BotEdge {
	outgoing := make(map[string][]*BotEdge, len(f.Nodes))
	for _, edge := range f.Edges {
		outgoing[edge.Source] = append(outgoing[edge.Source], edge)
	}

	return outgoing
}
