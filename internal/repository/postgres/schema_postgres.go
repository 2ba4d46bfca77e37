package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/donolu/enterprise-grc-system-sub000/internal/migrations"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

type schemaManager struct {
	db *sqlx.DB
}

// NewSchemaManager creates the PostgreSQL schema manager. One schema per
// tenant; the shared registry lives in the default schema.
func NewSchemaManager(db *sqlx.DB) repository.SchemaManager {
	return &schemaManager{db: db}
}

// CreateSchema allocates the physical namespace. IF NOT EXISTS keeps a
// provisioning retry from failing on the leftover of a crashed attempt.
func (m *schemaManager) CreateSchema(ctx context.Context, schema string) error {
	if _, err := m.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}
	return nil
}

// DropSchema removes the namespace and everything in it
func (m *schemaManager) DropSchema(ctx context.Context, schema string) error {
	if _, err := m.db.ExecContext(ctx, "DROP SCHEMA IF EXISTS "+pq.QuoteIdentifier(schema)+" CASCADE"); err != nil {
		return fmt.Errorf("failed to drop schema %s: %w", schema, err)
	}
	return nil
}

// EnsureMigrationsTable creates the per-schema bookkeeping table
func (m *schemaManager) EnsureMigrationsTable(ctx context.Context, schema string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, pq.QuoteIdentifier(schema))

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations in %s: %w", schema, err)
	}
	return nil
}

// AppliedVersions returns the versions already recorded for the schema
func (m *schemaManager) AppliedVersions(ctx context.Context, schema string) (map[string]bool, error) {
	query := fmt.Sprintf("SELECT version FROM %s.schema_migrations", pq.QuoteIdentifier(schema))

	var versions []string
	if err := m.db.SelectContext(ctx, &versions, query); err != nil {
		return nil, fmt.Errorf("failed to read applied versions for %s: %w", schema, err)
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// ApplyStep executes one structural change and its bookkeeping row in one
// transaction pinned to the schema. Either both land or neither does, which
// is what makes the orchestrator resumable.
func (m *schemaManager) ApplyStep(ctx context.Context, schema string, step migrations.Step) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "SET LOCAL search_path TO "+pq.QuoteIdentifier(schema)); err != nil {
		return fmt.Errorf("failed to set search_path to %s: %w", schema, err)
	}

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		return fmt.Errorf("failed to apply %s: %w", step.Version, err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", step.Version); err != nil {
		return fmt.Errorf("failed to record %s: %w", step.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", step.Version, err)
	}

	return nil
}
