package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
)

type DomainRepository interface {
	// ResolveTenant maps a hostname to its tenant in one indexed lookup.
	// Returns domain.ErrTenantNotFound when no domain record matches.
	ResolveTenant(ctx context.Context, hostname string) (*domain.Tenant, error)
	Create(ctx context.Context, d *domain.Domain) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Domain, error)
}
