package repository

import (
	"context"

	"github.com/donolu/enterprise-grc-system-sub000/internal/migrations"
)

// SchemaManager executes structural operations against one named schema.
// The provisioner and the migration orchestrator are its only callers;
// business code never reaches DDL.
type SchemaManager interface {
	CreateSchema(ctx context.Context, schema string) error
	// DropSchema removes the schema and everything in it. Compensating
	// action for failed provisioning.
	DropSchema(ctx context.Context, schema string) error
	// EnsureMigrationsTable creates the schema_migrations bookkeeping table
	// inside the schema if it does not exist yet.
	EnsureMigrationsTable(ctx context.Context, schema string) error
	// AppliedVersions returns the set of step versions recorded in the
	// schema's schema_migrations table.
	AppliedVersions(ctx context.Context, schema string) (map[string]bool, error)
	// ApplyStep runs one step and records it, both inside a single
	// schema-local transaction pinned to the schema via search_path.
	ApplyStep(ctx context.Context, schema string, step migrations.Step) error
}
