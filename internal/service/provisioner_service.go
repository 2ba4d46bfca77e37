package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/migrations"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

// ProvisionerService brings a tenant from provisioning to active with a
// fully-structured, empty schema. Failure at any step rolls the schema back
// completely and leaves the tenant in provisioning, so the operation can be
// retried.
type ProvisionerService struct {
	tenants repository.TenantRepository
	schemas repository.SchemaManager
	steps   []migrations.Step
	logger  *zap.Logger
}

func NewProvisionerService(
	tenants repository.TenantRepository,
	schemas repository.SchemaManager,
	logger *zap.Logger,
) *ProvisionerService {
	return &ProvisionerService{
		tenants: tenants,
		schemas: schemas,
		steps:   migrations.ForScope(migrations.ScopeTenant),
		logger:  logger,
	}
}

// Provision allocates the tenant's schema and applies the full baseline of
// tenant-scope structural changes. Calling it on an already-active tenant is
// a no-op; any other non-provisioning status is an illegal transition.
func (s *ProvisionerService) Provision(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	switch tenant.Status {
	case domain.TenantStatusProvisioning:
		// proceed
	case domain.TenantStatusActive:
		return tenant, nil
	default:
		return nil, &domain.InvalidStateTransitionError{From: tenant.Status, To: domain.TenantStatusActive}
	}

	schema := tenant.SchemaName
	s.logger.Info("provisioning tenant schema",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("schema", schema),
	)

	if err := s.provisionSchema(ctx, schema); err != nil {
		s.rollback(ctx, schema)
		return nil, &domain.ProvisioningError{SchemaName: schema, Err: err}
	}

	if err := s.tenants.UpdateStatus(ctx, tenantID, domain.TenantStatusActive); err != nil {
		// The namespace invariant is "no artifacts unless the provision
		// completed"; if activation cannot be persisted the schema goes too.
		s.rollback(ctx, schema)
		return nil, &domain.ProvisioningError{SchemaName: schema, Err: err}
	}

	tenant.Status = domain.TenantStatusActive
	s.logger.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("schema", schema),
		zap.Int("steps", len(s.steps)),
	)

	return tenant, nil
}

func (s *ProvisionerService) provisionSchema(ctx context.Context, schema string) error {
	if err := s.schemas.CreateSchema(ctx, schema); err != nil {
		return err
	}
	if err := s.schemas.EnsureMigrationsTable(ctx, schema); err != nil {
		return err
	}

	applied, err := s.schemas.AppliedVersions(ctx, schema)
	if err != nil {
		return err
	}

	for _, step := range s.steps {
		if applied[step.Version] {
			continue
		}
		if err := s.schemas.ApplyStep(ctx, schema, step); err != nil {
			return &domain.MigrationStepError{SchemaName: schema, Version: step.Version, Err: err}
		}
	}

	return nil
}

// rollback is the compensating action for a failed provision. Drop errors
// are logged but not surfaced; the caller already has the original failure.
func (s *ProvisionerService) rollback(ctx context.Context, schema string) {
	if err := s.schemas.DropSchema(ctx, schema); err != nil {
		s.logger.Error("failed to roll back partially provisioned schema",
			zap.String("schema", schema), zap.Error(err))
	}
}
