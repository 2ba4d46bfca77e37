package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

type domainRepository struct {
	db *sqlx.DB
}

// NewDomainRepository creates a new PostgreSQL domain repository
func NewDomainRepository(db *sqlx.DB) repository.DomainRepository {
	return &domainRepository{db: db}
}

// ResolveTenant maps a hostname to its tenant. Single lookup over the unique
// hostname index; this runs on every inbound request.
func (r *domainRepository) ResolveTenant(ctx context.Context, hostname string) (*domain.Tenant, error) {
	query := `
		SELECT t.id, t.schema_name, t.display_name, t.slug, t.status, t.created_at, t.updated_at
		FROM domains d
		JOIN tenants t ON t.id = d.tenant_id
		WHERE d.hostname = $1`

	var tenant domain.Tenant
	err := r.db.GetContext(ctx, &tenant, query, hostname)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to resolve hostname: %w", err)
	}

	return &tenant, nil
}

// Create inserts a new domain record
func (r *domainRepository) Create(ctx context.Context, d *domain.Domain) error {
	query := `
		INSERT INTO domains (id, tenant_id, hostname, is_primary, created_at)
		VALUES (:id, :tenant_id, :hostname, :is_primary, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		if conflict := asConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create domain: %w", err)
	}

	return nil
}

// ListByTenant retrieves all domains mapped to a tenant, primary first
func (r *domainRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Domain, error) {
	query := `
		SELECT id, tenant_id, hostname, is_primary, created_at
		FROM domains
		WHERE tenant_id = $1
		ORDER BY is_primary DESC, created_at ASC`

	var domains []*domain.Domain
	if err := r.db.SelectContext(ctx, &domains, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	return domains, nil
}
