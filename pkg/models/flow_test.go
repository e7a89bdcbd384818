package models_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbotio/flowbot/pkg/models"
)

func TestBotNodeIsTrigger(t *testing.T) {
	assert.True(t, (&models.BotNode{Type: "trigger_webhook"}).IsTrigger())
	assert.True(t, (&models.BotNode{Type: "trigger_custom"}).IsTrigger())
	assert.False(t, (&models.BotNode{Type: "action_api_call"}).IsTrigger())
	assert.False(t, (&models.BotNode{Type: "logic_condition"}).IsTrigger())
}

func TestBotNodeConfigNeverNil(t *testing.T) {
	node := &models.BotNode{ID: "n1", Type: "action_api_call"}
	assert.NotNil(t, node.Config())

	node.Data.Config = map[string]any{"url": "https://example.com"}
	assert.Equal(t, "https://example.com", node.Config()["url"])
}

func TestBotEdgeSelector(t *testing.T) {
	assert.Equal(t, "true", (&models.BotEdge{SourceHandle: "true", Label: "false"}).Selector())
	assert.Equal(t, "false", (&models.BotEdge{Label: "false"}).Selector())
	assert.Empty(t, (&models.BotEdge{}).Selector())
}

func TestFirstTriggerUsesArrayOrder(t *testing.T) {
	flow := &models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "a1", Type: "action_api_call"},
			{ID: "t1", Type: "trigger_webhook"},
			{ID: "t2", Type: "trigger_schedule"},
		},
	}

	trigger := flow.FirstTrigger()
	require.NotNil(t, trigger)
	assert.Equal(t, "t1", trigger.ID)
}

func TestOutgoingEdgesPreservesOrder(t *testing.T) {
	flow := &models.BotFlow{
		Edges: []*models.BotEdge{
			{ID: "e2", Source: "n1", Target: "b"},
			{ID: "e1", Source: "n1", Target: "a"},
			{ID: "e3", Source: "n2", Target: "c"},
		},
	}

	outgoing := flow.OutgoingEdges()
	require.Len(t, outgoing["n1"], 2)
	assert.Equal(t, "e2", outgoing["n1"][0].ID)
	assert.Equal(t, "e1", outgoing["n1"][1].ID)
	require.Len(t, outgoing["n2"], 1)
}

func TestExecutionContextNodeOutputs(t *testing.T) {
	execCtx := models.NewExecutionContext("exec-1", "agent-1", "org-1", "user-1", map[string]any{"k": "v"})

	assert.Equal(t, "v", execCtx.Variables["k"])

	execCtx.SetNodeOutput("n1", 42)

	output, ok := execCtx.NodeOutput("n1")
	require.True(t, ok)
	assert.Equal(t, 42, output)

	_, ok = execCtx.NodeOutput("n2")
	assert.False(t, ok)

	// The snapshot is a copy.
	outputs := execCtx.NodeOutputs()
	outputs["n1"] = "tampered"

	output, _ = execCtx.NodeOutput("n1")
	assert.Equal(t, 42, output)
}

func TestExecutionContextConcurrentWrites(t *testing.T) {
	execCtx := models.NewExecutionContext("exec-1", "agent-1", "org-1", "", nil)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			execCtx.SetNodeOutput("n"+string(rune('a'+i%26)), i)
		}()
	}

	wg.Wait()

	assert.NotEmpty(t, execCtx.NodeOutputs())
}
