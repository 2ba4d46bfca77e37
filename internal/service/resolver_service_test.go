package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
)

func resolverFixture() (*fakeDomainRepo, *ResolverService) {
	domains := newFakeDomainRepo()
	resolver := NewResolverService(domains, nil, zap.NewNop())
	return domains, resolver
}

func TestResolve_ActiveTenant(t *testing.T) {
	domains, resolver := resolverFixture()

	acme := provisioningTenant("acme")
	acme.Status = domain.TenantStatusActive
	domains.add("acme.example.com", acme, true)

	tenant, err := resolver.Resolve(context.Background(), "acme.example.com")

	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Slug)
	assert.Equal(t, "t_acme", tenant.SchemaName)
}

func TestResolve_UnknownHostname(t *testing.T) {
	_, resolver := resolverFixture()

	_, err := resolver.Resolve(context.Background(), "unknown.example.com")

	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestResolve_SuspendedAndArchivedAreDistinguishable(t *testing.T) {
	domains, resolver := resolverFixture()

	suspended := provisioningTenant("acme")
	suspended.Status = domain.TenantStatusSuspended
	domains.add("acme.example.com", suspended, true)

	archived := provisioningTenant("globex")
	archived.Status = domain.TenantStatusArchived
	domains.add("globex.example.com", archived, true)

	_, err := resolver.Resolve(context.Background(), "acme.example.com")
	var unavailable *domain.TenantUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.TenantStatusSuspended, unavailable.Status)

	_, err = resolver.Resolve(context.Background(), "globex.example.com")
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.TenantStatusArchived, unavailable.Status)
}

func TestResolve_ProvisioningTenantUnavailable(t *testing.T) {
	domains, resolver := resolverFixture()

	pending := provisioningTenant("acme")
	domains.add("acme.example.com", pending, true)

	_, err := resolver.Resolve(context.Background(), "acme.example.com")

	var unavailable *domain.TenantUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.TenantStatusProvisioning, unavailable.Status)
}

func TestResolve_NormalizesHostname(t *testing.T) {
	domains, resolver := resolverFixture()

	acme := provisioningTenant("acme")
	acme.Status = domain.TenantStatusActive
	domains.add("acme.example.com", acme, true)

	tenant, err := resolver.Resolve(context.Background(), "ACME.Example.com:8443")

	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Slug)
}

func TestResolve_ActiveTenantIsCached(t *testing.T) {
	domains := newFakeDomainRepo()
	cache := newFakeTenantCache()
	resolver := NewResolverService(domains, cache, zap.NewNop())

	acme := provisioningTenant("acme")
	acme.Status = domain.TenantStatusActive
	domains.add("acme.example.com", acme, true)

	_, err := resolver.Resolve(context.Background(), "acme.example.com")
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), "acme.example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, domains.resolved, "second resolve must come from the cache")
}

func TestResolve_ProvisioningTenantNotCachedUntilActive(t *testing.T) {
	domains := newFakeDomainRepo()
	cache := newFakeTenantCache()
	resolver := NewResolverService(domains, cache, zap.NewNop())

	acme := provisioningTenant("acme")
	domains.add("acme.example.com", acme, true)

	_, err := resolver.Resolve(context.Background(), "acme.example.com")
	var unavailable *domain.TenantUnavailableError
	require.ErrorAs(t, err, &unavailable)

	_, ok := cache.cached("acme.example.com")
	assert.False(t, ok, "a non-active tenant must never be cached")

	// Activation happens outside the registry's invalidation path, so the
	// very next resolve has to observe the new status.
	acme.Status = domain.TenantStatusActive

	tenant, err := resolver.Resolve(context.Background(), "acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Slug)

	cached, ok := cache.cached("acme.example.com")
	require.True(t, ok)
	assert.Equal(t, domain.TenantStatusActive, cached.Status)
}

func TestResolve_EmptyHostname(t *testing.T) {
	_, resolver := resolverFixture()

	_, err := resolver.Resolve(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}
