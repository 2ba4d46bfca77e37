package domain

import (
	"time"

	"github.com/google/uuid"
)

// TenantStatus represents the lifecycle state of a tenant
type TenantStatus string

const (
	TenantStatusProvisioning TenantStatus = "provisioning"
	TenantStatusActive       TenantStatus = "active"
	TenantStatusSuspended    TenantStatus = "suspended"
	TenantStatusArchived     TenantStatus = "archived"
)

// Tenant represents one client organization and its dedicated schema.
// Tenants are never hard-deleted; archival is a status transition so the
// audit history survives.
type Tenant struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	SchemaName  string       `json:"schema_name" db:"schema_name"`
	DisplayName string       `json:"display_name" db:"display_name"`
	Slug        string       `json:"slug" db:"slug"`
	Status      TenantStatus `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// statusTransitions is the legal lifecycle transition table. Archived is terminal.
var statusTransitions = map[TenantStatus][]TenantStatus{
	TenantStatusProvisioning: {TenantStatusActive},
	TenantStatusActive:       {TenantStatusSuspended, TenantStatusArchived},
	TenantStatusSuspended:    {TenantStatusActive, TenantStatusArchived},
	TenantStatusArchived:     {},
}

// CanTransitionTo reports whether moving from s to next is a legal transition
func (s TenantStatus) CanTransitionTo(next TenantStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether the tenant accepts request traffic
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
