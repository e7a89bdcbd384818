// Package redis provides Redis persistence for flows and executions. Flow
// documents and execution records are JSON strings; node log entries are
// appended to a per-execution list. Completed executions expire after a
// retention window.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/persistence"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

const (
	flowKeyPrefix      = "flowbot:flow:"
	executionKeyPrefix = "flowbot:execution:"

	completedRetention = 7 * 24 * time.Hour
)

type Persistence struct {
	client *redis.Client
}

func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client}, nil
}

// NewPersistenceWithClient wraps an existing client. Used by tests.
func NewPersistenceWithClient(client *redis.Client) *Persistence {
	return &Persistence{client: client}
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func flowKey(agentID string) string {
	return flowKeyPrefix + agentID
}

func executionKey(executionID string) string {
	return executionKeyPrefix + executionID
}

func executionLogKey(executionID string) string {
	return executionKeyPrefix + executionID + ":log"
}

func (p *Persistence) LoadFlow(ctx context.Context, agentID string) (*models.BotFlow, error) {
	raw, err := p.client.Get(ctx, flowKey(agentID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("agent %s: %w", agentID, persistence.ErrFlowNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load flow for agent %s: %w", agentID, err)
	}

	var flow models.BotFlow
	if err := json.Unmarshal([]byte(raw), &flow); err != nil {
		return nil, fmt.Errorf("failed to parse flow for agent %s: %w", agentID, err)
	}

	return &flow, nil
}

func (p *Persistence) SaveFlow(ctx context.Context, agentID string, flow *models.BotFlow) error {
	raw, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to encode flow for agent %s: %w", agentID, err)
	}

	if err := p.client.Set(ctx, flowKey(agentID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save flow for agent %s: %w", agentID, err)
	}

	return nil
}

func (p *Persistence) StartExecution(ctx context.Context, start protocol.StartExecution) (string, error) {
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

	if err := p.writeExecution(ctx, execution, 0); err != nil {
		return "", err
	}

	return executionID, nil
}

func (p *Persistence) LogNode(ctx context.Context, executionID string, entry models.NodeLogEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode log entry for node %s: %w", entry.NodeID, err)
	}

	if err := p.client.RPush(ctx, executionLogKey(executionID), raw).Err(); err != nil {
		return fmt.Errorf("failed to log node %s: %w", entry.NodeID, err)
	}

	return nil
}

func (p *Persistence) CompleteExecution(ctx context.Context, executionID string, success bool, output any, errMsg string) error {
	execution, err := p.readExecution(ctx, executionID)
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

	if err := p.writeExecution(ctx, execution, completedRetention); err != nil {
		return err
	}

	if err := p.client.Expire(ctx, executionLogKey(executionID), completedRetention).Err(); err != nil {
		return fmt.Errorf("failed to set log retention for execution %s: %w", executionID, err)
	}

	return nil
}

func (p *Persistence) ExecutionStatus(ctx context.Context, executionID, organizationID string) (*models.Execution, error) {
	execution, err := p.readExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if execution.OrganizationID != organizationID {
		return nil, fmt.Errorf("execution %s: %w", executionID, persistence.ErrExecutionNotFound)
	}

	entries, err := p.client.LRange(ctx, executionLogKey(executionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load log of execution %s: %w", executionID, err)
	}

	for _, raw := range entries {
		var entry models.NodeLogEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("failed to parse log entry of execution %s: %w", executionID, err)
		}

		execution.Log = append(execution.Log, entry)
	}

	return execution, nil
}

func (p *Persistence) readExecution(ctx context.Context, executionID string) (*models.Execution, error) {
	raw, err := p.client.Get(ctx, executionKey(executionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("execution %s: %w", executionID, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load execution %s: %w", executionID, err)
	}

	var execution models.Execution
	if err := json.Unmarshal([]byte(raw), &execution); err != nil {
		return nil, fmt.Errorf("failed to parse execution %s: %w", executionID, err)
	}

	return &execution, nil
}

func (p *Persistence) writeExecution(ctx context.Context, execution *models.Execution, ttl time.Duration) error {
	raw, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", execution.ID, err)
	}

	if err := p.client.Set(ctx, executionKey(execution.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write execution %s: %w", execution.ID, err)
	}

	return nil
}
