package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// RegistryService owns the shared tenant catalog: tenant records, their
// domains and lifecycle transitions. It never touches tenant schemas.
type RegistryService struct {
	tenants repository.TenantRepository
	domains repository.DomainRepository
	cache   TenantCache
	logger  *zap.Logger
}

func NewRegistryService(
	tenants repository.TenantRepository,
	domains repository.DomainRepository,
	cache TenantCache,
	logger *zap.Logger,
) *RegistryService {
	return &RegistryService{
		tenants: tenants,
		domains: domains,
		cache:   cache,
		logger:  logger,
	}
}

// CreateTenant registers a tenant in provisioning state together with its
// primary domain, in one atomic write. The schema name is derived from the
// slug and is immutable from here on.
func (s *RegistryService) CreateTenant(ctx context.Context, displayName, slug, hostname string) (*domain.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !isValidSlug(slug) {
		return nil, &domain.ValidationError{Field: "slug", Message: "must be lowercase alphanumeric with hyphens, 3-63 characters"}
	}

	hostname = normalizeHostname(hostname)
	if hostname == "" {
		return nil, &domain.ValidationError{Field: "hostname", Message: "hostname is required"}
	}

	now := time.Now().UTC()
	tenant := &domain.Tenant{
		ID:          uuid.New(),
		SchemaName:  SchemaNameForSlug(slug),
		DisplayName: displayName,
		Slug:        slug,
		Status:      domain.TenantStatusProvisioning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	primary := &domain.Domain{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Hostname:  hostname,
		IsPrimary: true,
		CreatedAt: now,
	}

	if err := s.tenants.CreateWithDomain(ctx, tenant, primary); err != nil {
		return nil, err
	}

	s.logger.Info("tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", slug),
		zap.String("schema", tenant.SchemaName),
		zap.String("hostname", hostname),
	)

	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *RegistryService) GetTenant(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return s.tenants.GetByID(ctx, id)
}

// ListTenants retrieves tenants with pagination
func (s *RegistryService) ListTenants(ctx context.Context, limit, offset int) ([]*domain.Tenant, int, error) {
	return s.tenants.List(ctx, limit, offset)
}

// ResolveDomain maps a hostname to its tenant straight from the registry
func (s *RegistryService) ResolveDomain(ctx context.Context, hostname string) (*domain.Tenant, error) {
	return s.domains.ResolveTenant(ctx, normalizeHostname(hostname))
}

// TransitionStatus moves a tenant through its lifecycle. Illegal transitions
// fail with InvalidStateTransitionError; successful ones invalidate every
// cached hostname of the tenant so resolution observes the new status.
func (s *RegistryService) TransitionStatus(ctx context.Context, id uuid.UUID, next domain.TenantStatus) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !tenant.Status.CanTransitionTo(next) {
		return nil, &domain.InvalidStateTransitionError{From: tenant.Status, To: next}
	}

	if err := s.tenants.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}

	s.logger.Info("tenant status changed",
		zap.String("tenant_id", id.String()),
		zap.String("slug", tenant.Slug),
		zap.String("from", string(tenant.Status)),
		zap.String("to", string(next)),
	)

	tenant.Status = next
	s.invalidateTenantDomains(ctx, tenant)

	return tenant, nil
}

// AddDomain attaches a non-primary alias hostname to a tenant
func (s *RegistryService) AddDomain(ctx context.Context, tenantID uuid.UUID, hostname string) (*domain.Domain, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	hostname = normalizeHostname(hostname)
	if hostname == "" {
		return nil, &domain.ValidationError{Field: "hostname", Message: "hostname is required"}
	}

	d := &domain.Domain{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Hostname:  hostname,
		IsPrimary: false,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.domains.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("domain added",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("hostname", hostname),
	)

	return d, nil
}

// invalidateTenantDomains drops every cached hostname of the tenant. Cache
// trouble is logged, not surfaced: the TTL bounds the damage.
func (s *RegistryService) invalidateTenantDomains(ctx context.Context, tenant *domain.Tenant) {
	if s.cache == nil {
		return
	}

	domains, err := s.domains.ListByTenant(ctx, tenant.ID)
	if err != nil {
		s.logger.Warn("failed to list domains for cache invalidation",
			zap.String("tenant_id", tenant.ID.String()), zap.Error(err))
		return
	}

	for _, d := range domains {
		if err := s.cache.Invalidate(ctx, d.Hostname); err != nil {
			s.logger.Warn("failed to invalidate cached domain",
				zap.String("hostname", d.Hostname), zap.Error(err))
		}
	}
}

// SchemaNameForSlug derives the immutable schema identifier for a slug.
// Hyphens are not valid unquoted in Postgres identifiers, so they map to
// underscores; the t_ prefix keeps tenant schemas apart from everything else.
func SchemaNameForSlug(slug string) string {
	return "t_" + strings.ReplaceAll(slug, "-", "_")
}

func isValidSlug(slug string) bool {
	if len(slug) < 3 || len(slug) > 63 {
		return false
	}
	return slugPattern.MatchString(slug)
}

func normalizeHostname(hostname string) string {
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	// Strip a port if the caller passed host:port
	if i := strings.IndexByte(hostname, ':'); i >= 0 {
		hostname = hostname[:i]
	}
	return strings.TrimSuffix(hostname, ".")
}
