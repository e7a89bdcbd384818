// Package file provides file-based persistence for flows and executions.
// Flows live under flows/ as JSON or YAML documents named by agent ID;
// executions live under executions/ as one JSON file each.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/persistence"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

// Persistence implements persistence.Persistence on the local file system.
// Execution writes are serialized with a single mutex; this backend targets
// development and tests, not contended production use.
type Persistence struct {
	root string

	mu sync.Mutex
}

func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.TrimPrefix(root, "file://")

	for _, dir := range []string{"flows", "executions"} {
		if err := os.MkdirAll(filepath.Join(cleanRoot, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}

	return &Persistence{root: cleanRoot}, nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); err != nil {
		return fmt.Errorf("persistence root unavailable: %w", err)
	}

	return nil
}

// LoadFlow reads flows/<agentID>.json, falling back to .yaml and .yml.
func (p *Persistence) LoadFlow(_ context.Context, agentID string) (*models.BotFlow, error) {
	base := filepath.Join(p.root, "flows", agentID)

	data, err := os.ReadFile(base + ".json")
	if err == nil {
		var flow models.BotFlow
		if err := json.Unmarshal(data, &flow); err != nil {
			return nil, fmt.Errorf("failed to parse flow for agent %s: %w", agentID, err)
		}

		return &flow, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read flow for agent %s: %w", agentID, err)
	}

	for _, ext := range []string{".yaml", ".yml"} {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			continue
		}

		var flow models.BotFlow
		if err := yaml.Unmarshal(data, &flow); err != nil {
			return nil, fmt.Errorf("failed to parse flow for agent %s: %w", agentID, err)
		}

		return &flow, nil
	}

	return nil, fmt.Errorf("agent %s: %w", agentID, persistence.ErrFlowNotFound)
}

// SaveFlow writes the flow as flows/<agentID>.json.
func (p *Persistence) SaveFlow(_ context.Context, agentID string, flow *models.BotFlow) error {
	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode flow for agent %s: %w", agentID, err)
	}

	path := filepath.Join(p.root, "flows", agentID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write flow for agent %s: %w", agentID, err)
	}

	return nil
}

func (p *Persistence) StartExecution(_ context.Context, start protocol.StartExecution) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	executionID := "exec-" + uuid.New().String()[:8]

	execution := &models.Execution{
		ID:              executionID,
		AgentID:         start.AgentID,
		OrganizationID:  start.OrganizationID,
		TriggeredBy:     start.TriggeredBy,
		TriggeredByUser: start.TriggeredByUser,
		Status:          models.ExecutionStatusRunning,
		Input:           start.Input,
		StartedAt:       time.Now().UTC(),
	}

	if err := p.writeExecution(execution); err != nil {
		return "", err
	}

	return executionID, nil
}

func (p *Persistence) LogNode(_ context.Context, executionID string, entry models.NodeLogEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	execution, err := p.readExecution(executionID)
	if err != nil {
		return err
	}

	execution.Log = append(execution.Log, entry)

	return p.writeExecution(execution)
}

func (p *Persistence) CompleteExecution(_ context.Context, executionID string, success bool, output any, errMsg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	execution, err := p.readExecution(executionID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	execution.CompletedAt = &now
	execution.Output = output
	execution.Error = errMsg

	execution.Status = models.ExecutionStatusCompleted
	if !success {
		execution.Status = models.ExecutionStatusFailed
	}

	return p.writeExecution(execution)
}

// ExecutionStatus returns the execution record, hiding records that belong
// to another organization.
func (p *Persistence) ExecutionStatus(_ context.Context, executionID, organizationID string) (*models.Execution, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	execution, err := p.readExecution(executionID)
	if err != nil {
		return nil, err
	}

	if execution.OrganizationID != organizationID {
		return nil, fmt.Errorf("execution %s: %w", executionID, persistence.ErrExecutionNotFound)
	}

	return execution, nil
}

func (p *Persistence) executionPath(executionID string) string {
	return filepath.Join(p.root, "executions", executionID+".json")
}

func (p *Persistence) readExecution(executionID string) (*models.Execution, error) {
	data, err := os.ReadFile(p.executionPath(executionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("execution %s: %w", executionID, persistence.ErrExecutionNotFound)
		}

		return nil, fmt.Errorf("failed to read execution %s: %w", executionID, err)
	}

	var execution models.Execution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("failed to parse execution %s: %w", executionID, err)
	}

	return &execution, nil
}

func (p *Persistence) writeExecution(execution *models.Execution) error {
	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", execution.ID, err)
	}

	if err := os.WriteFile(p.executionPath(execution.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write execution %s: %w", execution.ID, err)
	}

	return nil
}
