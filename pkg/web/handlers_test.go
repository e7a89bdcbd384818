package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbotio/flowbot/pkg/engine"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/persistence/file"
	"github.com/flowbotio/flowbot/pkg/registry"
	"github.com/flowbotio/flowbot/pkg/web"
)

// stubRunner records the request it received and returns a canned result.
type stubRunner struct {
	lastRequest engine.Request
	result      models.ExecutionResult
}

func (s *stubRunner) Execute(_ context.Context, req engine.Request) models.ExecutionResult {
	s.lastRequest = req

	return s.result
}

func setupTestApp(t *testing.T, runner *stubRunner) (*fiber.App, *file.Persistence) {
	t.Helper()

	store, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	handlers := web.NewAPIHandlers(
		slog.New(slog.DiscardHandler),
		runner,
		store,
		registry.NewWithDefaults(slog.New(slog.DiscardHandler)),
		validator.New(validator.WithRequiredStructEnabled()),
	)

	return web.NewApp(handlers, prometheus.NewRegistry()), store
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestExecuteAgent(t *testing.T) {
	runner := &stubRunner{result: models.ExecutionResult{
		Success:       true,
		ExecutionID:   "exec-42",
		Output:        map[string]any{"done": true},
		NodesExecuted: 3,
	}}
	app, _ := setupTestApp(t, runner)

	req := jsonRequest(http.MethodPost, "/agents/agent-1/execute", web.ExecuteRequest{
		Input:       map[string]any{"flag": true},
		TriggeredBy: "webhook",
		UserID:      "user-1",
	})
	req.Header.Set("X-Organization-ID", "org-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result models.ExecutionResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Success)
	assert.Equal(t, "exec-42", result.ExecutionID)
	assert.Equal(t, 3, result.NodesExecuted)

	assert.Equal(t, "agent-1", runner.lastRequest.AgentID)
	assert.Equal(t, "org-1", runner.lastRequest.OrganizationID)
	assert.Equal(t, "user-1", runner.lastRequest.UserID)
	assert.Equal(t, "webhook", runner.lastRequest.TriggeredBy)
}

func TestExecuteAgentRequiresOrganization(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	req := jsonRequest(http.MethodPost, "/agents/agent-1/execute", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecuteAgentReportsEngineFailureWith200(t *testing.T) {
	runner := &stubRunner{result: models.ExecutionResult{
		Success: false,
		Error:   "No trigger node found",
	}}
	app, _ := setupTestApp(t, runner)

	req := jsonRequest(http.MethodPost, "/agents/agent-1/execute", nil)
	req.Header.Set("X-Organization-ID", "org-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)

	var result models.ExecutionResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Success)
	assert.Equal(t, "No trigger node found", result.Error)
}

func TestGetExecutionNotFound(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/executions/exec-nope", nil)
	req.Header.Set("X-Organization-ID", "org-1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidateFlow(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	flow := models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: "trigger_webhook"},
			{ID: "c1", Type: "logic_condition", Data: models.NodeData{
				Config: map[string]any{"expression": "input.flag"},
			}},
		},
		Edges: []*models.BotEdge{{ID: "e1", Source: "t1", Target: "c1"}},
	}

	resp, err := app.Test(jsonRequest(http.MethodPost, "/flows/validate", flow))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)

	var result web.ValidateFlowResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateFlowReportsProblems(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	flow := models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "c1", Type: "logic_condition"},
		},
		Edges: []*models.BotEdge{{ID: "e1", Source: "c1", Target: "ghost"}},
	}

	resp, err := app.Test(jsonRequest(http.MethodPost, "/flows/validate", flow))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)

	var result web.ValidateFlowResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestSaveAndGetFlow(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	flow := models.BotFlow{
		Nodes: []*models.BotNode{
			{ID: "t1", Type: "trigger_webhook"},
			{ID: "a1", Type: "action_api_call", Data: models.NodeData{
				Config: map[string]any{"url": "https://example.com"},
			}},
		},
		Edges: []*models.BotEdge{{ID: "e1", Source: "t1", Target: "a1"}},
	}

	resp, err := app.Test(jsonRequest(http.MethodPut, "/agents/agent-1/flow", flow))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/agents/agent-1/flow", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)

	var loaded models.BotFlow
	require.NoError(t, json.Unmarshal(body, &loaded))
	require.Len(t, loaded.Nodes, 2)
	assert.Equal(t, "a1", loaded.Nodes[1].ID)
}

func TestSaveFlowRejectsInvalidFlow(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	flow := models.BotFlow{
		Nodes: []*models.BotNode{{ID: "a1", Type: "action_api_call"}},
	}

	resp, err := app.Test(jsonRequest(http.MethodPut, "/agents/agent-1/flow", flow))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetFlowNotFound(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/agents/nope/flow", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListNodeTypes(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/node-types", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)

	var result struct {
		NodeTypes []string `json:"node_types"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Contains(t, result.NodeTypes, "trigger_webhook")
	assert.Contains(t, result.NodeTypes, "logic_parallel")
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupTestApp(t, &stubRunner{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
