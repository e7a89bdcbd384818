// Package web provides the HTTP surface of the execution engine: running
// agents, inspecting executions and validating flows.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowbotio/flowbot/pkg/engine"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/persistence"
	"github.com/flowbotio/flowbot/pkg/registry"
)

const organizationHeader = "X-Organization-ID"

// Runner executes agent flows. Satisfied by *engine.Engine.
type Runner interface {
	Execute(ctx context.Context, req engine.Request) models.ExecutionResult
}

type APIHandlers struct {
	logger    *slog.Logger
	runner    Runner
	store     persistence.Persistence
	registry  *registry.Registry
	validator *validator.Validate
}

func NewAPIHandlers(
	logger *slog.Logger,
	runner Runner,
	store persistence.Persistence,
	reg *registry.Registry,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		logger:    logger,
		runner:    runner,
		store:     store,
		registry:  reg,
		validator: validate,
	}
}

// ExecuteAgent runs an agent's flow synchronously and returns the result.
// The result reports engine-level failures with HTTP 200; non-2xx statuses
// are reserved for request-level problems.
func (h *APIHandlers) ExecuteAgent(c fiber.Ctx) error {
	agentID := c.Params("id")
	if agentID == "" {
		return badRequest(c, "Agent ID is required")
	}

	organizationID := c.Get(organizationHeader)
	if organizationID == "" {
		return badRequest(c, organizationHeader+" header is required")
	}

	var req ExecuteRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	result := h.runner.Execute(c.Context(), engine.Request{
		AgentID:        agentID,
		OrganizationID: organizationID,
		UserID:         req.UserID,
		Input:          req.Input,
		TriggeredBy:    req.TriggeredBy,
		TriggerNodeID:  req.TriggerNodeID,
	})

	return c.JSON(result)
}

// GetExecution returns an execution record with its node log. Executions of
// other organizations are indistinguishable from missing ones.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	executionID := c.Params("id")
	if executionID == "" {
		return badRequest(c, "Execution ID is required")
	}

	organizationID := c.Get(organizationHeader)
	if organizationID == "" {
		return badRequest(c, organizationHeader+" header is required")
	}

	execution, err := h.store.ExecutionStatus(c.Context(), executionID, organizationID)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(execution)
}

// ValidateFlow runs structural and per-node config validation on the posted
// flow without persisting or executing anything.
func (h *APIHandlers) ValidateFlow(c fiber.Ctx) error {
	var flow models.BotFlow
	if err := c.Bind().JSON(&flow); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	validationErrors := h.registry.ValidateFlow(h.validator, &flow)

	return c.JSON(ValidateFlowResponse{
		Valid:  len(validationErrors) == 0,
		Errors: validationErrors,
	})
}

// GetFlow returns the persisted flow of an agent.
func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	agentID := c.Params("id")
	if agentID == "" {
		return badRequest(c, "Agent ID is required")
	}

	flow, err := h.store.LoadFlow(c.Context(), agentID)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(flow)
}

// SaveFlow stores an agent's flow after validating it.
func (h *APIHandlers) SaveFlow(c fiber.Ctx) error {
	agentID := c.Params("id")
	if agentID == "" {
		return badRequest(c, "Agent ID is required")
	}

	var flow models.BotFlow
	if err := c.Bind().JSON(&flow); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if validationErrors := models.ValidateFlow(h.validator, &flow); len(validationErrors) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidateFlowResponse{
			Valid:  false,
			Errors: validationErrors,
		})
	}

	if err := h.store.SaveFlow(c.Context(), agentID, &flow); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// ListNodeTypes returns the node types the engine can execute.
func (h *APIHandlers) ListNodeTypes(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"node_types": h.registry.Types()})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	storeCheck := "ok"
	if err := h.store.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
		storeCheck = err.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"persistence": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
