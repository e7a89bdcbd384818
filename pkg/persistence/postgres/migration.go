package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
)

const currentSchemaVersion = 1

var migrations = map[int]string{
	1: `
		CREATE TABLE IF NOT EXISTS flows (
			agent_id TEXT PRIMARY KEY,
			flow JSONB NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			triggered_by TEXT NOT NULL DEFAULT '',
			triggered_by_user TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			input JSONB,
			output JSONB,
			error TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			completed_at TIMESTAMP WITH TIME ZONE
		);

		CREATE INDEX IF NOT EXISTS idx_executions_agent ON executions (agent_id, started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_executions_org ON executions (organization_id);

		CREATE TABLE IF NOT EXISTS execution_log (
			id BIGSERIAL PRIMARY KEY,
			execution_id TEXT NOT NULL REFERENCES executions (id) ON DELETE CASCADE,
			node_id TEXT NOT NULL,
			status TEXT NOT NULL,
			output JSONB,
			error TEXT NOT NULL DEFAULT '',
			logged_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_execution_log_execution ON execution_log (execution_id, id);
	`,
}

// migrationManager applies schema migrations in version order, recording
// applied versions in schema_migrations.
type migrationManager struct {
	db     *sql.DB
	logger *slog.Logger
}

func (m *migrationManager) run(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return err
	}

	currentVersion, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}

	if currentVersion >= currentSchemaVersion {
		return nil
	}

	m.logger.InfoContext(ctx, "Applying database migrations",
		"from_version", currentVersion, "to_version", currentSchemaVersion)

	versions := make([]int, 0, len(migrations))
	for version := range migrations {
		versions = append(versions, version)
	}

	sort.Ints(versions)

	for _, version := range versions {
		if version <= currentVersion {
			continue
		}

		if err := m.apply(ctx, version, migrations[version]); err != nil {
			return err
		}
	}

	return nil
}

func (m *migrationManager) createMigrationsTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	return nil
}

func (m *migrationManager) currentVersion(ctx context.Context) (int, error) {
	var version int

	err := m.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query current schema version: %w", err)
	}

	return version, nil
}

func (m *migrationManager) apply(ctx context.Context, version int, migration string) error {
	transaction, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", version, err)
	}

	if _, err := transaction.ExecContext(ctx, migration); err != nil {
		_ = transaction.Rollback()

		return fmt.Errorf("failed to execute migration %d: %w", version, err)
	}

	if _, err := transaction.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		_ = transaction.Rollback()

		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", version, err)
	}

	m.logger.InfoContext(ctx, "Migration applied", "version", version)

	return nil
}
