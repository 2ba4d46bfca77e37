package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

// ResolverService maps an inbound hostname to exactly one tenant, or rejects
// the request. A request that cannot be resolved to an active tenant never
// reaches business logic; there is no fallback tenant.
type ResolverService struct {
	domains repository.DomainRepository
	cache   TenantCache
	logger  *zap.Logger
}

func NewResolverService(domains repository.DomainRepository, cache TenantCache, logger *zap.Logger) *ResolverService {
	return &ResolverService{
		domains: domains,
		cache:   cache,
		logger:  logger,
	}
}

// Resolve returns the active tenant for a hostname. Unknown hostnames fail
// with ErrTenantNotFound; known but non-active tenants fail with
// TenantUnavailableError carrying the status, so "does not exist" and
// "temporarily unavailable" stay distinguishable to callers.
func (s *ResolverService) Resolve(ctx context.Context, hostname string) (*domain.Tenant, error) {
	hostname = normalizeHostname(hostname)
	if hostname == "" {
		return nil, domain.ErrTenantNotFound
	}

	tenant, err := s.lookup(ctx, hostname)
	if err != nil {
		return nil, err
	}

	if !tenant.IsActive() {
		return nil, &domain.TenantUnavailableError{Slug: tenant.Slug, Status: tenant.Status}
	}

	return tenant, nil
}

// lookup consults the cache first and falls back to the registry. Cache
// failures degrade to registry lookups rather than failing the request.
func (s *ResolverService) lookup(ctx context.Context, hostname string) (*domain.Tenant, error) {
	if s.cache != nil {
		tenant, err := s.cache.Get(ctx, hostname)
		if err != nil {
			s.logger.Warn("resolution cache read failed", zap.String("hostname", hostname), zap.Error(err))
		} else if tenant != nil {
			return tenant, nil
		}
	}

	tenant, err := s.domains.ResolveTenant(ctx, hostname)
	if err != nil {
		return nil, err
	}

	// Only active tenants are cached. A tenant mid-provisioning would
	// otherwise keep resolving as unavailable for a full TTL after the
	// provisioner activates it, since activation bypasses the registry's
	// invalidation path.
	if s.cache != nil && tenant.IsActive() {
		if err := s.cache.Set(ctx, hostname, tenant); err != nil {
			s.logger.Warn("resolution cache write failed", zap.String("hostname", hostname), zap.Error(err))
		}
	}

	return tenant, nil
}
