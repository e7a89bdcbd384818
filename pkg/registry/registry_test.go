package registry_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/registry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testNode(nodeType string, config map[string]any) *models.BotNode {
	return &models.BotNode{
		ID:   "n1",
		Type: nodeType,
		Data: models.NodeData{Config: config},
	}
}

func TestDispatchUnknownType(t *testing.T) {
	reg := registry.New(quietLogger())

	result := reg.Dispatch(context.Background(), testNode("does_not_exist", nil), nil, execCtx())

	assert.False(t, result.Success)
	assert.Equal(t, "Unknown node type: does_not_exist", result.Error)
}

func TestDispatchExecutorError(t *testing.T) {
	reg := registry.New(quietLogger())
	reg.Register("action_api_call", protocol.ExecutorFunc(func(_ context.Context, _ *models.BotNode, _ any, _ *models.ExecutionContext) (any, error) {
		return nil, errors.New("upstream timeout")
	}))

	result := reg.Dispatch(context.Background(), testNode("action_api_call", nil), nil, execCtx())

	assert.False(t, result.Success)
	assert.Equal(t, "upstream timeout", result.Error)
}

func TestDispatchRecoversPanic(t *testing.T) {
	reg := registry.New(quietLogger())
	reg.Register("action_api_call", protocol.ExecutorFunc(func(_ context.Context, _ *models.BotNode, _ any, _ *models.ExecutionContext) (any, error) {
		panic("boom")
	}))

	result := reg.Dispatch(context.Background(), testNode("action_api_call", nil), nil, execCtx())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "executor panic")
	assert.Contains(t, result.Error, "boom")
}

func TestDispatchSuccess(t *testing.T) {
	reg := registry.New(quietLogger())
	reg.Register("action_api_call", protocol.ExecutorFunc(func(_ context.Context, _ *models.BotNode, input any, _ *models.ExecutionContext) (any, error) {
		return input, nil
	}))

	result := reg.Dispatch(context.Background(), testNode("action_api_call", nil), "payload", execCtx())

	assert.True(t, result.Success)
	assert.Equal(t, "payload", result.Output)
	assert.Empty(t, result.Error)
}

func TestRegisterReplacesBinding(t *testing.T) {
	reg := registry.New(quietLogger())
	reg.Register("action_api_call", protocol.ExecutorFunc(func(_ context.Context, _ *models.BotNode, _ any, _ *models.ExecutionContext) (any, error) {
		return "old", nil
	}))
	reg.Register("action_api_call", protocol.ExecutorFunc(func(_ context.Context, _ *models.BotNode, _ any, _ *models.ExecutionContext) (any, error) {
		return "new", nil
	}))

	result := reg.Dispatch(context.Background(), testNode("action_api_call", nil), nil, execCtx())

	assert.Equal(t, "new", result.Output)
}

func TestNewWithDefaultsCoversBuiltinTypes(t *testing.T) {
	reg := registry.NewWithDefaults(quietLogger())

	expected := []string{
		models.NodeTypeTriggerWebhook,
		models.NodeTypeTriggerSchedule,
		models.NodeTypeTriggerEvent,
		models.NodeTypeTriggerEmail,
		models.NodeTypeTriggerForm,
		models.NodeTypeActionAIResponse,
		models.NodeTypeActionAPICall,
		models.NodeTypeActionSendEmail,
		models.NodeTypeActionSendNotification,
		models.NodeTypeActionCreateTask,
		models.NodeTypeActionUpdateDB,
		models.NodeTypeActionRAGSearch,
		models.NodeTypeLogicCondition,
		models.NodeTypeLogicSwitch,
		models.NodeTypeLogicLoop,
		models.NodeTypeLogicDelay,
		models.NodeTypeLogicParallel,
		models.NodeTypeLogicMerge,
		models.NodeTypeTransformData,
		models.NodeTypeTransformFilter,
		models.NodeTypeTransformAggregate,
	}

	for _, nodeType := range expected {
		assert.True(t, reg.Has(nodeType), "missing executor for %s", nodeType)
	}

	assert.Len(t, reg.Types(), len(expected))
}

func TestValidateConfig(t *testing.T) {
	reg := registry.New(quietLogger())

	require.NoError(t, reg.ValidateConfig(testNode(models.NodeTypeLogicCondition, map[string]any{
		"expression": "input.flag",
	})))

	err := reg.ValidateConfig(testNode(models.NodeTypeLogicCondition, map[string]any{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expression")

	err = reg.ValidateConfig(testNode(models.NodeTypeActionAPICall, map[string]any{
		"url":    "https://example.com",
		"method": "TELEPORT",
	}))
	require.Error(t, err)

	// Types without a schema accept anything.
	require.NoError(t, reg.ValidateConfig(testNode(models.NodeTypeLogicMerge, map[string]any{"whatever": 1})))
}

func TestValidateFlow(t *testing.T) {
	reg := registry.NewWithDefaults(quietLogger())
	validate := validator.New(validator.WithRequiredStructEnabled())

	valid := &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: models.NodeTypeTriggerWebhook},
			{ID: "c1", Type: models.NodeTypeLogicCondition, Data: models.NodeData{
				Config: map[string]any{"expression": "input.flag"},
			}},
		},
		Edges: []*models.BotEdge{{ID: "e1", Source: "t1", Target: "c1"}},
	}
	assert.Empty(t, reg.ValidateFlow(validate, valid))

	// Structural problems and config-schema problems are reported together.
	broken := &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: models.NodeTypeTriggerWebhook},
			{ID: "c1", Type: models.NodeTypeLogicCondition},
		},
		Edges: []*models.BotEdge{{ID: "e1", Source: "c1", Target: "ghost"}},
	}

	validationErrors := reg.ValidateFlow(validate, broken)
	require.NotEmpty(t, validationErrors)

	var configError bool
	for _, validationError := range validationErrors {
		if validationError.NodeID == "c1" && validationError.Detail != "" {
			configError = true
		}
	}
	assert.True(t, configError, "expected a config validation error for c1")

	// Unregistered node types only get structural checks.
	unknown := &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: models.NodeTypeTriggerWebhook},
			{ID: "x1", Type: "action_custom_plugin"},
		},
		Edges: []*models.BotEdge{{ID: "e1", Source: "t1", Target: "x1"}},
	}
	assert.Empty(t, reg.ValidateFlow(validate, unknown))
}

func execCtx() *models.ExecutionContext {
	return models.NewExecutionContext("exec-1", "agent-1", "org-1", "", nil)
}
