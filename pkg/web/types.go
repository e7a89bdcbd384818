package web

import "github.com/flowbotio/flowbot/pkg/models"

// ExecuteRequest is the body of POST /agents/:id/execute.
type ExecuteRequest struct {
	Input         map[string]any `json:"input"`
	TriggeredBy   string         `json:"triggered_by"`
	UserID        string         `json:"user_id"`
	TriggerNodeID string         `json:"trigger_node_id"`
}

// ValidateFlowResponse is the body of POST /flows/validate.
type ValidateFlowResponse struct {
	Valid  bool                     `json:"valid"`
	Errors []models.ValidationError `json:"errors,omitempty"`
}
