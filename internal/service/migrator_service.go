package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/migrations"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

// SharedSchema is where the tenant registry and the shared migration
// bookkeeping live.
const SharedSchema = "public"

// ReportNotifier delivers a migration summary to operators when a run left
// failures behind.
type ReportNotifier interface {
	SendMigrationReport(ctx context.Context, summary *domain.MigrationSummary) error
}

// MigratorService applies pending structural changes to the shared schema
// first, then to every migratable tenant schema. A tenant failure is recorded
// and skipped; a shared-schema failure aborts the run before any tenant is
// touched.
type MigratorService struct {
	tenants  repository.TenantRepository
	schemas  repository.SchemaManager
	shared   []migrations.Step
	tenantSt []migrations.Step
	notifier ReportNotifier
	logger   *zap.Logger
}

func NewMigratorService(
	tenants repository.TenantRepository,
	schemas repository.SchemaManager,
	notifier ReportNotifier,
	logger *zap.Logger,
) *MigratorService {
	return &MigratorService{
		tenants:  tenants,
		schemas:  schemas,
		shared:   migrations.ForScope(migrations.ScopeShared),
		tenantSt: migrations.ForScope(migrations.ScopeTenant),
		notifier: notifier,
		logger:   logger,
	}
}

// RunPending executes one orchestration pass. Suspended tenants are migrated
// along with active ones so reactivation never serves a stale schema;
// provisioning tenants belong to the provisioner and archived ones are
// frozen. The run is idempotent: schemas already carrying a step skip it.
func (m *MigratorService) RunPending(ctx context.Context) (*domain.MigrationSummary, error) {
	summary := &domain.MigrationSummary{StartedAt: time.Now().UTC()}

	if err := m.migrateShared(ctx, summary); err != nil {
		return summary, err
	}

	tenants, err := m.tenants.ListByStatus(ctx, domain.TenantStatusActive, domain.TenantStatusSuspended)
	if err != nil {
		return summary, fmt.Errorf("failed to enumerate tenants: %w", err)
	}
	summary.TenantsTotal = len(tenants)

	for _, tenant := range tenants {
		m.migrateTenant(ctx, tenant, summary)
	}

	summary.FinishedAt = time.Now().UTC()

	m.logger.Info("migration run finished",
		zap.Int("shared_applied", summary.SharedApplied),
		zap.Int("tenants", summary.TenantsTotal),
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)

	if summary.Failed > 0 && m.notifier != nil {
		if err := m.notifier.SendMigrationReport(ctx, summary); err != nil {
			m.logger.Error("failed to send migration failure report", zap.Error(err))
		}
	}

	return summary, nil
}

// migrateShared applies pending shared-scope steps. Any failure here is
// fatal: every tenant resolution depends on the shared schema, so it must
// never be left half-migrated.
func (m *MigratorService) migrateShared(ctx context.Context, summary *domain.MigrationSummary) error {
	if err := m.schemas.EnsureMigrationsTable(ctx, SharedSchema); err != nil {
		return fmt.Errorf("shared store: %w", err)
	}

	applied, err := m.schemas.AppliedVersions(ctx, SharedSchema)
	if err != nil {
		return fmt.Errorf("shared store: %w", err)
	}

	for _, step := range m.shared {
		if applied[step.Version] {
			continue
		}
		if err := m.schemas.ApplyStep(ctx, SharedSchema, step); err != nil {
			return fmt.Errorf("shared store migration aborted: %w",
				&domain.MigrationStepError{SchemaName: SharedSchema, Version: step.Version, Err: err})
		}
		summary.SharedApplied++
		m.logger.Info("shared migration applied", zap.String("version", step.Version))
	}

	return nil
}

// migrateTenant applies pending tenant-scope steps to one schema. The first
// failing step fails the tenant for this run; the batch moves on.
func (m *MigratorService) migrateTenant(ctx context.Context, tenant *domain.Tenant, summary *domain.MigrationSummary) {
	schema := tenant.SchemaName

	fail := func(version string, err error) {
		summary.Failed++
		summary.Failures = append(summary.Failures, domain.MigrationFailure{
			TenantID:   tenant.ID,
			Slug:       tenant.Slug,
			SchemaName: schema,
			Version:    version,
			Reason:     err.Error(),
		})
		m.logger.Error("tenant migration failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("slug", tenant.Slug),
			zap.String("schema", schema),
			zap.String("version", version),
			zap.Error(err),
		)
	}

	if err := m.schemas.EnsureMigrationsTable(ctx, schema); err != nil {
		fail("", err)
		return
	}

	applied, err := m.schemas.AppliedVersions(ctx, schema)
	if err != nil {
		fail("", err)
		return
	}

	for _, step := range m.tenantSt {
		if applied[step.Version] {
			summary.Skipped++
			continue
		}
		if err := m.schemas.ApplyStep(ctx, schema, step); err != nil {
			fail(step.Version, err)
			return
		}
		summary.Applied++
		m.logger.Info("tenant migration applied",
			zap.String("slug", tenant.Slug),
			zap.String("version", step.Version),
		)
	}
}
