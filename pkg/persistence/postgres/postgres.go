// Package postgres provides PostgreSQL persistence for flows and executions.
// Flows are stored as JSONB documents; node log entries are append-only rows
// in execution_log.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/persistence"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence opens the database, verifies connectivity and applies
// pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	manager := &migrationManager{db: db, logger: logger}
	if err := manager.run(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Persistence{db: db, logger: logger}, nil
}

func (p *Persistence) Close(_ context.Context) error {
	return p.db.Close()
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Persistence) LoadFlow(ctx context.Context, agentID string) (*models.BotFlow, error) {
	var raw []byte

	err := p.db.QueryRowContext(ctx, "SELECT flow FROM flows WHERE agent_id = $1", agentID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agent %s: %w", agentID, persistence.ErrFlowNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load flow for agent %s: %w", agentID, err)
	}

	var flow models.BotFlow
	if err := json.Unmarshal(raw, &flow); err != nil {
		return nil, fmt.Errorf("failed to parse flow for agent %s: %w", agentID, err)
	}

	return &flow, nil
}

func (p *Persistence) SaveFlow(ctx context.Context, agentID string, flow *models.BotFlow) error {
	raw, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to encode flow for agent %s: %w", agentID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO flows (agent_id, flow, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (agent_id) DO UPDATE SET flow = EXCLUDED.flow, updated_at = NOW()
	`, agentID, raw)
	if err != nil {
		return fmt.Errorf("failed to save flow for agent %s: %w", agentID, err)
	}

	return nil
}

func (p *Persistence) StartExecution(ctx context.Context, start protocol.StartExecution) (string, error) {
	executionID := "exec-" + uuid.New().String()[:8]

	input, err := json.Marshal(start.Input)
	if err != nil {
		return "", fmt.Errorf("failed to encode execution input: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO executions (id, agent_id, organization_id, triggered_by, triggered_by_user, status, input, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, executionID, start.AgentID, start.OrganizationID, start.TriggeredBy, start.TriggeredByUser,
		models.ExecutionStatusRunning, input, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create execution record: %w", err)
	}

	return executionID, nil
}

func (p *Persistence) LogNode(ctx context.Context, executionID string, entry models.NodeLogEntry) error {
	output, err := json.Marshal(entry.Output)
	if err != nil {
		return fmt.Errorf("failed to encode node output: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO execution_log (execution_id, node_id, status, output, error, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, executionID, entry.NodeID, entry.Status, output, entry.Error, entry.LoggedAt)
	if err != nil {
		return fmt.Errorf("failed to log node %s: %w", entry.NodeID, err)
	}

	return nil
}

func (p *Persistence) CompleteExecution(ctx context.Context, executionID string, success bool, output any, errMsg string) error {
	status := models.ExecutionStatusCompleted
	if !success {
		status = models.ExecutionStatusFailed
	}

	raw, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to encode execution output: %w", err)
	}

	result, err := p.db.ExecContext(ctx, `
		UPDATE executions SET status = $1, output = $2, error = $3, completed_at = $4 WHERE id = $5
	`, status, raw, errMsg, time.Now().UTC(), executionID)
	if err != nil {
		return fmt.Errorf("failed to complete execution %s: %w", executionID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete execution %s: %w", executionID, err)
	}

	if affected == 0 {
		return fmt.Errorf("execution %s: %w", executionID, persistence.ErrExecutionNotFound)
	}

	return nil
}

func (p *Persistence) ExecutionStatus(ctx context.Context, executionID, organizationID string) (*models.Execution, error) {
	var (
		execution models.Execution
		input     []byte
		output    []byte
	)

	err := p.db.QueryRowContext(ctx, `
		SELECT id, agent_id, organization_id, triggered_by, triggered_by_user, status, input, output, error, started_at, completed_at
		FROM executions WHERE id = $1 AND organization_id = $2
	`, executionID, organizationID).Scan(
		&execution.ID, &execution.AgentID, &execution.OrganizationID,
		&execution.TriggeredBy, &execution.TriggeredByUser, &execution.Status,
		&input, &output, &execution.Error, &execution.StartedAt, &execution.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("execution %s: %w", executionID, persistence.ErrExecutionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load execution %s: %w", executionID, err)
	}

	if len(input) > 0 {
		if err := json.Unmarshal(input, &execution.Input); err != nil {
			return nil, fmt.Errorf("failed to parse input of execution %s: %w", executionID, err)
		}
	}

	if len(output) > 0 {
		if err := json.Unmarshal(output, &execution.Output); err != nil {
			return nil, fmt.Errorf("failed to parse output of execution %s: %w", executionID, err)
		}
	}

	log, err := p.executionLog(ctx, executionID)
	if err != nil {
		return nil, err
	}

	execution.Log = log

	return &execution, nil
}

func (p *Persistence) executionLog(ctx context.Context, executionID string) ([]models.NodeLogEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT node_id, status, output, error, logged_at
		FROM execution_log WHERE execution_id = $1 ORDER BY id
	`, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load log of execution %s: %w", executionID, err)
	}
	defer rows.Close()

	var log []models.NodeLogEntry

	for rows.Next() {
		var (
			entry  models.NodeLogEntry
			output []byte
		)

		if err := rows.Scan(&entry.NodeID, &entry.Status, &output, &entry.Error, &entry.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}

		if len(output) > 0 {
			if err := json.Unmarshal(output, &entry.Output); err != nil {
				return nil, fmt.Errorf("failed to parse log entry output: %w", err)
			}
		}

		log = append(log, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log of execution %s: %w", executionID, err)
	}

	return log, nil
}
