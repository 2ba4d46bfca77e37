package domain

import (
	"time"

	"github.com/google/uuid"
)

// MigrationRecord is one applied structural change in one schema. Each schema
// (the shared one included) carries its own schema_migrations table; presence
// of a row is the sole source of truth for "this schema has this change".
type MigrationRecord struct {
	Version   string    `json:"version" db:"version"`
	AppliedAt time.Time `json:"applied_at" db:"applied_at"`
}

// MigrationFailure describes one tenant schema the orchestrator could not migrate
type MigrationFailure struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	Slug       string    `json:"slug"`
	SchemaName string    `json:"schema_name"`
	Version    string    `json:"version"`
	Reason     string    `json:"reason"`
}

// MigrationSummary is the outcome of one orchestrator run
type MigrationSummary struct {
	SharedApplied int                `json:"shared_applied"`
	TenantsTotal  int                `json:"tenants_total"`
	Applied       int                `json:"applied"`
	Skipped       int                `json:"skipped"`
	Failed        int                `json:"failed"`
	Failures      []MigrationFailure `json:"failures,omitempty"`
	StartedAt     time.Time          `json:"started_at"`
	FinishedAt    time.Time          `json:"finished_at"`
}
