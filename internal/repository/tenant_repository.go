package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
)

type TenantRepository interface {
	// CreateWithDomain inserts a tenant and its primary domain in one
	// transaction. Duplicate slug, schema name or hostname surfaces as
	// *domain.ConflictError and leaves the registry unchanged.
	CreateWithDomain(ctx context.Context, tenant *domain.Tenant, primary *domain.Domain) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Tenant, int, error)
	ListByStatus(ctx context.Context, statuses ...domain.TenantStatus) ([]*domain.Tenant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error
}
