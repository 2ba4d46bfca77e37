package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

type tenantRepository struct {
	db *sqlx.DB
}

// NewTenantRepository creates a new PostgreSQL tenant repository
func NewTenantRepository(db *sqlx.DB) repository.TenantRepository {
	return &tenantRepository{db: db}
}

// CreateWithDomain inserts the tenant and its primary domain atomically.
// The unique constraints on slug, schema_name and hostname are the
// serialization point for concurrent creates; a losing writer gets a
// ConflictError and nothing is persisted.
func (r *tenantRepository) CreateWithDomain(ctx context.Context, tenant *domain.Tenant, primary *domain.Domain) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	tenantQuery := `
		INSERT INTO tenants (id, schema_name, display_name, slug, status, created_at, updated_at)
		VALUES (:id, :schema_name, :display_name, :slug, :status, :created_at, :updated_at)`

	if _, err := tx.NamedExecContext(ctx, tenantQuery, tenant); err != nil {
		if conflict := asConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	domainQuery := `
		INSERT INTO domains (id, tenant_id, hostname, is_primary, created_at)
		VALUES (:id, :tenant_id, :hostname, :is_primary, :created_at)`

	if _, err := tx.NamedExecContext(ctx, domainQuery, primary); err != nil {
		if conflict := asConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create primary domain: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tenant creation: %w", err)
	}

	return nil
}

// GetByID retrieves a tenant by its ID
func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `
		SELECT id, schema_name, display_name, slug, status, created_at, updated_at
		FROM tenants
		WHERE id = $1`

	var tenant domain.Tenant
	err := r.db.GetContext(ctx, &tenant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by id: %w", err)
	}

	return &tenant, nil
}

// GetBySlug retrieves a tenant by its slug
func (r *tenantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	query := `
		SELECT id, schema_name, display_name, slug, status, created_at, updated_at
		FROM tenants
		WHERE slug = $1`

	var tenant domain.Tenant
	err := r.db.GetContext(ctx, &tenant, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by slug: %w", err)
	}

	return &tenant, nil
}

// List retrieves tenants with pagination
func (r *tenantRepository) List(ctx context.Context, limit, offset int) ([]*domain.Tenant, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tenants`); err != nil {
		return nil, 0, fmt.Errorf("failed to count tenants: %w", err)
	}

	query := `
		SELECT id, schema_name, display_name, slug, status, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var tenants []*domain.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenants, total, nil
}

// ListByStatus retrieves every tenant in one of the given statuses, oldest first.
// The migration orchestrator enumerates its batch through this.
func (r *tenantRepository) ListByStatus(ctx context.Context, statuses ...domain.TenantStatus) ([]*domain.Tenant, error) {
	query := `
		SELECT id, schema_name, display_name, slug, status, created_at, updated_at
		FROM tenants
		WHERE status = ANY($1)
		ORDER BY created_at ASC`

	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	var tenants []*domain.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, pq.Array(values)); err != nil {
		return nil, fmt.Errorf("failed to list tenants by status: %w", err)
	}

	return tenants, nil
}

// UpdateStatus persists a lifecycle transition
func (r *tenantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	query := `
		UPDATE tenants
		SET status = $1, updated_at = now()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrTenantNotFound
	}

	return nil
}

// asConflict maps a Postgres unique violation to a ConflictError, extracting
// the offending column from the constraint name.
func asConflict(err error) *domain.ConflictError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}

	field := "identifier"
	switch {
	case strings.Contains(pqErr.Constraint, "slug"):
		field = "slug"
	case strings.Contains(pqErr.Constraint, "schema_name"):
		field = "schema_name"
	case strings.Contains(pqErr.Constraint, "hostname"):
		field = "hostname"
	}

	return &domain.ConflictError{Field: field, Value: pqErr.Detail}
}
