package domain

import (
	"time"

	"github.com/google/uuid"
)

// Domain maps an inbound hostname to exactly one tenant. A tenant has exactly
// one primary domain plus any number of non-primary aliases; hostnames are
// globally unique across all tenants.
type Domain struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Hostname  string    `json:"hostname" db:"hostname"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
