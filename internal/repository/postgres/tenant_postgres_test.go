package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, repository.TenantRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, NewTenantRepository(sqlxDB)
}

func sampleTenant() *domain.Tenant {
	now := time.Now().UTC()
	return &domain.Tenant{
		ID:          uuid.New(),
		SchemaName:  "t_acme",
		DisplayName: "Acme Corp",
		Slug:        "acme",
		Status:      domain.TenantStatusProvisioning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func tenantRows(tenant *domain.Tenant) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "schema_name", "display_name", "slug", "status", "created_at", "updated_at",
	}).AddRow(
		tenant.ID, tenant.SchemaName, tenant.DisplayName, tenant.Slug,
		string(tenant.Status), tenant.CreatedAt, tenant.UpdatedAt,
	)
}

func TestGetByID_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	tenant := sampleTenant()

	mock.ExpectQuery(`SELECT id, schema_name, display_name, slug, status, created_at, updated_at\s+FROM tenants\s+WHERE id = \$1`).
		WithArgs(tenant.ID).
		WillReturnRows(tenantRows(tenant))

	got, err := repo.GetByID(context.Background(), tenant.ID)

	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
	assert.Equal(t, "t_acme", got.SchemaName)
	assert.Equal(t, domain.TenantStatusProvisioning, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM tenants`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithDomain_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	tenant := sampleTenant()
	primary := &domain.Domain{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Hostname:  "acme.example.com",
		IsPrimary: true,
		CreatedAt: tenant.CreatedAt,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tenants`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO domains`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateWithDomain(context.Background(), tenant, primary)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithDomain_DuplicateSlugLeavesRegistryUnchanged(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tenants`).
		WillReturnError(&pq.Error{
			Code:       "23505",
			Constraint: "tenants_slug_key",
			Detail:     "Key (slug)=(acme) already exists.",
		})
	mock.ExpectRollback()

	err := repo.CreateWithDomain(context.Background(), sampleTenant(), &domain.Domain{})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "slug", conflict.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithDomain_DuplicateHostnameRollsBackTenant(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tenants`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO domains`).
		WillReturnError(&pq.Error{
			Code:       "23505",
			Constraint: "domains_hostname_key",
			Detail:     "Key (hostname)=(acme.example.com) already exists.",
		})
	mock.ExpectRollback()

	err := repo.CreateWithDomain(context.Background(), sampleTenant(), &domain.Domain{})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "hostname", conflict.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE tenants`).
		WithArgs(string(domain.TenantStatusSuspended), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, domain.TenantStatusSuspended)

	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByStatus(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	active := sampleTenant()
	active.Status = domain.TenantStatusActive

	mock.ExpectQuery(`SELECT .+ FROM tenants\s+WHERE status = ANY\(\$1\)`).
		WillReturnRows(tenantRows(active))

	tenants, err := repo.ListByStatus(context.Background(), domain.TenantStatusActive, domain.TenantStatusSuspended)

	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, domain.TenantStatusActive, tenants[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
