// Package engine interprets bot flow graphs. It walks the graph from a
// trigger node, dispatches each node through the executor registry, and
// records progress through the lifecycle collaborator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowbotio/flowbot/pkg/events"
	"github.com/flowbotio/flowbot/pkg/metrics"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/registry"
)

// Config wires the engine's collaborators. Loader, Lifecycle and Registry
// are required; Publisher and Metrics are optional. A positive NodeTimeout
// bounds each executor call with context.WithTimeout.
type Config struct {
	Loader      protocol.FlowLoader
	Lifecycle   protocol.Lifecycle
	Registry    *registry.Registry
	Logger      *slog.Logger
	Publisher   protocol.Publisher
	Metrics     *metrics.Metrics
	NodeTimeout time.Duration
}

// Engine executes bot flows. Safe for concurrent use; each Execute call owns
// its own traversal state.
type Engine struct {
	loader      protocol.FlowLoader
	lifecycle   protocol.Lifecycle
	registry    *registry.Registry
	logger      *slog.Logger
	publisher   protocol.Publisher
	metrics     *metrics.Metrics
	nodeTimeout time.Duration
}

func New(config Config) (*Engine, error) {
	if config.Loader == nil {
		return nil, errors.New("flow loader is required")
	}

	if config.Lifecycle == nil {
		return nil, errors.New("lifecycle is required")
	}

	if config.Registry == nil {
		return nil, errors.New("registry is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		loader:      config.Loader,
		lifecycle:   config.Lifecycle,
		registry:    config.Registry,
		logger:      logger,
		publisher:   config.Publisher,
		metrics:     config.Metrics,
		nodeTimeout: config.NodeTimeout,
	}, nil
}

// Request describes one execution of an agent's flow. TriggerNodeID selects
// the entry point explicitly; when empty, the first trigger node in the flow
// is used.
type Request struct {
	AgentID        string
	OrganizationID string
	UserID         string
	Input          map[string]any
	TriggeredBy    string
	TriggerNodeID  string
}

// Execute runs the agent's flow to completion and returns a result that is
// immutable once returned. An execution record is opened before the first
// node runs and closed exactly once, regardless of outcome.
func (e *Engine) Execute(ctx context.Context, req Request) models.ExecutionResult {
	started := time.Now()
	logger := e.logger.With("agent_id", req.AgentID, "organization_id", req.OrganizationID)

	executionID, err := e.lifecycle.StartExecution(ctx, protocol.StartExecution{
		AgentID:         req.AgentID,
		OrganizationID:  req.OrganizationID,
		TriggeredBy:     req.TriggeredBy,
		TriggeredByUser: req.UserID,
		Input:           req.Input,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start execution", "error", err)

		return models.ExecutionResult{
			Success:         false,
			Error:           fmt.Sprintf("failed to start execution: %v", err),
			ExecutionTimeMs: time.Since(started).Milliseconds(),
		}
	}

	logger = logger.With("execution_id", executionID)
	logger.InfoContext(ctx, "Execution started", "triggered_by", req.TriggeredBy)

	e.publish(ctx, logger, req.AgentID, events.ExecutionStarted{
		BaseEvent:   e.baseEvent(events.ExecutionStartedEvent, req, executionID),
		TriggeredBy: req.TriggeredBy,
		Input:       req.Input,
	})

	result := e.run(ctx, logger, executionID, req)

	if err := e.lifecycle.CompleteExecution(ctx, executionID, result.Success, result.Output, result.Error); err != nil {
		logger.ErrorContext(ctx, "Failed to close execution record", "error", err)
	}

	duration := time.Since(started)
	result.ExecutionID = executionID
	result.ExecutionTimeMs = duration.Milliseconds()
	e.metrics.ObserveExecution(result.Success, duration.Seconds())

	if result.Success {
		logger.InfoContext(ctx, "Execution completed",
			"nodes_executed", result.NodesExecuted, "duration_ms", result.ExecutionTimeMs)
		e.publish(ctx, logger, req.AgentID, events.ExecutionFinished{
			BaseEvent:     e.baseEvent(events.ExecutionFinishedEvent, req, executionID),
			Output:        result.Output,
			NodesExecuted: result.NodesExecuted,
			Duration:      duration,
		})
	} else {
		logger.WarnContext(ctx, "Execution failed",
			"error", result.Error, "nodes_executed", result.NodesExecuted)
		e.publish(ctx, logger, req.AgentID, events.ExecutionFailed{
			BaseEvent:     e.baseEvent(events.ExecutionFailedEvent, req, executionID),
			Error:         result.Error,
			NodesExecuted: result.NodesExecuted,
			Duration:      duration,
		})
	}

	return result
}

func (e *Engine) run(ctx context.Context, logger *slog.Logger, executionID string, req Request) models.ExecutionResult {
	flow, err := e.loader.LoadFlow(ctx, req.AgentID)
	if err != nil {
		return models.ExecutionResult{Success: false, Error: fmt.Sprintf("failed to load flow: %v", err)}
	}

	// Loaders may signal a missing flow as (nil, nil). Treat that and a
	// flow without nodes as load failures so traversal never starts.
	if flow == nil || len(flow.Nodes) == 0 {
		return models.ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("failed to load flow: agent %s has no flow data", req.AgentID),
		}
	}

	trigger := flow.FirstTrigger()
	if req.TriggerNodeID != "" {
		trigger = flow.NodeByID(req.TriggerNodeID)
		if trigger != nil && !trigger.IsTrigger() {
			trigger = nil
		}
	}

	if trigger == nil {
		return models.ExecutionResult{Success: false, Error: "No trigger node found"}
	}

	r := &run{
		engine:   e,
		logger:   logger,
		flow:     flow,
		outgoing: flow.OutgoingEdges(),
		execCtx:  models.NewExecutionContext(executionID, req.AgentID, req.OrganizationID, req.UserID, req.Input),
	}

	nodeResult := r.runNode(ctx, trigger, req.Input, map[string]bool{})

	return models.ExecutionResult{
		Success:       nodeResult.Success,
		Output:        nodeResult.Output,
		Error:         nodeResult.Error,
		NodesExecuted: r.nodesExecuted(),
	}
}

func (e *Engine) publish(ctx context.Context, logger *slog.Logger, key string, event events.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) baseEvent(eventType events.EventType, req Request, executionID string) events.BaseEvent {
	return events.BaseEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		Timestamp:      time.Now().UTC(),
		AgentID:        req.AgentID,
		OrganizationID: req.OrganizationID,
		ExecutionID:    executionID,
	}
}
