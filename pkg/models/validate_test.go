package models_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbotio/flowbot/pkg/models"
)

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func validFlow() *models.BotFlow {
	return &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: "trigger_webhook"},
			{ID: "a1", Type: "action_api_call"},
		},
		Edges: []*models.BotEdge{
			{ID: "e1", Source: "t1", Target: "a1"},
		},
	}
}

func TestValidateFlowAcceptsValidFlow(t *testing.T) {
	errs := models.ValidateFlow(newValidator(), validFlow())
	assert.Empty(t, errs)
}

func TestValidateFlowDuplicateNodeID(t *testing.T) {
	flow := validFlow()
	flow.Nodes = append(flow.Nodes, &models.BotNode{ID: "a1", Type: "action_send_email"})

	errs := models.ValidateFlow(newValidator(), flow)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Detail, "duplicate node id")
}

func TestValidateFlowDanglingEdge(t *testing.T) {
	flow := validFlow()
	flow.Edges = append(flow.Edges, &models.BotEdge{ID: "e2", Source: "a1", Target: "ghost"})

	errs := models.ValidateFlow(newValidator(), flow)
	require.Len(t, errs, 1)
	assert.Equal(t, "e2", errs[0].EdgeID)
	assert.Contains(t, errs[0].Detail, "unknown target")
}

func TestValidateFlowMissingTrigger(t *testing.T) {
	flow := &models.BotFlow{
		Nodes: []*models.BotNode{{ID: "a1", Type: "action_api_call"}},
	}

	errs := models.ValidateFlow(newValidator(), flow)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Detail, "no trigger node")
}

func TestValidateFlowMissingRequiredFields(t *testing.T) {
	flow := &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: "trigger_webhook"},
			{ID: "", Type: "action_api_call"},
		},
	}

	errs := models.ValidateFlow(newValidator(), flow)
	assert.NotEmpty(t, errs)
}

func TestValidateFlowConditionBranchTags(t *testing.T) {
	flow := &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: "trigger_webhook"},
			{ID: "c1", Type: "logic_condition"},
			{ID: "a1", Type: "action_api_call"},
			{ID: "a2", Type: "action_api_call"},
		},
		Edges: []*models.BotEdge{
			{ID: "e1", Source: "t1", Target: "c1"},
			{ID: "e2", Source: "c1", Target: "a1"},
			{ID: "e3", Source: "c1", Target: "a2"},
		},
	}

	errs := models.ValidateFlow(newValidator(), flow)
	require.Len(t, errs, 1)
	assert.Equal(t, "c1", errs[0].NodeID)
	assert.Contains(t, errs[0].Detail, `one "true" and one "false" edge`)

	flow.Edges[1].SourceHandle = "true"
	flow.Edges[2].SourceHandle = "false"

	assert.Empty(t, models.ValidateFlow(newValidator(), flow))
}

func TestValidateFlowExtraEdgesOnPlainNode(t *testing.T) {
	flow := &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: "trigger_webhook"},
			{ID: "a1", Type: "action_api_call"},
			{ID: "a2", Type: "action_api_call"},
		},
		Edges: []*models.BotEdge{
			{ID: "e1", Source: "t1", Target: "a1"},
			{ID: "e2", Source: "t1", Target: "a2"},
		},
	}

	errs := models.ValidateFlow(newValidator(), flow)
	require.Len(t, errs, 1)
	assert.Equal(t, "t1", errs[0].NodeID)
	assert.Contains(t, errs[0].Detail, "only the first is followed")
}

func TestValidateFlowAllowsSwitchAndParallelFanOut(t *testing.T) {
	flow := &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: "trigger_webhook"},
			{ID: "p1", Type: "logic_parallel"},
			{ID: "a1", Type: "action_api_call"},
			{ID: "a2", Type: "action_api_call"},
			{ID: "a3", Type: "action_api_call"},
		},
		Edges: []*models.BotEdge{
			{ID: "e1", Source: "t1", Target: "p1"},
			{ID: "e2", Source: "p1", Target: "a1"},
			{ID: "e3", Source: "p1", Target: "a2"},
			{ID: "e4", Source: "p1", Target: "a3"},
		},
	}

	assert.Empty(t, models.ValidateFlow(newValidator(), flow))
}
