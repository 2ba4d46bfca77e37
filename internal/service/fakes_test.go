package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/migrations"
)

// fakeTenantRepo is an in-memory TenantRepository keeping insertion order
type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants []*domain.Tenant

	createErr error
	updateErr error
}

func newFakeTenantRepo(tenants ...*domain.Tenant) *fakeTenantRepo {
	return &fakeTenantRepo{tenants: tenants}
}

func (r *fakeTenantRepo) CreateWithDomain(ctx context.Context, tenant *domain.Tenant, primary *domain.Domain) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.tenants {
		if existing.Slug == tenant.Slug {
			return &domain.ConflictError{Field: "slug", Value: tenant.Slug}
		}
		if existing.SchemaName == tenant.SchemaName {
			return &domain.ConflictError{Field: "schema_name", Value: tenant.SchemaName}
		}
	}
	r.tenants = append(r.tenants, tenant)
	return nil
}

func (r *fakeTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tenants {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

func (r *fakeTenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tenants {
		if t.Slug == slug {
			copied := *t
			return &copied, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

func (r *fakeTenantRepo) List(ctx context.Context, limit, offset int) ([]*domain.Tenant, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Tenant, len(r.tenants))
	copy(out, r.tenants)
	return out, len(r.tenants), nil
}

func (r *fakeTenantRepo) ListByStatus(ctx context.Context, statuses ...domain.TenantStatus) ([]*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Tenant
	for _, t := range r.tenants {
		for _, s := range statuses {
			if t.Status == s {
				copied := *t
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeTenantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TenantStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	for _, t := range r.tenants {
		if t.ID == id {
			t.Status = status
			return nil
		}
	}
	return domain.ErrTenantNotFound
}

// fakeDomainRepo is an in-memory DomainRepository
type fakeDomainRepo struct {
	mu       sync.Mutex
	byHost   map[string]*domain.Tenant
	records  []*domain.Domain
	resolved int
}

func newFakeDomainRepo() *fakeDomainRepo {
	return &fakeDomainRepo{byHost: make(map[string]*domain.Tenant)}
}

func (r *fakeDomainRepo) add(hostname string, tenant *domain.Tenant, primary bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byHost[hostname] = tenant
	r.records = append(r.records, &domain.Domain{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Hostname:  hostname,
		IsPrimary: primary,
	})
}

func (r *fakeDomainRepo) ResolveTenant(ctx context.Context, hostname string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resolved++
	tenant, ok := r.byHost[hostname]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	copied := *tenant
	return &copied, nil
}

func (r *fakeDomainRepo) Create(ctx context.Context, d *domain.Domain) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byHost[d.Hostname]; exists {
		return &domain.ConflictError{Field: "hostname", Value: d.Hostname}
	}
	r.records = append(r.records, d)
	return nil
}

func (r *fakeDomainRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Domain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Domain
	for _, d := range r.records {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeSchemaManager tracks schemas and applied steps in memory
type fakeSchemaManager struct {
	mu      sync.Mutex
	schemas map[string]bool
	applied map[string]map[string]bool
	dropped []string
	calls   []string

	// failApply injects a failure for one (schema, version) pair
	failApply func(schema, version string) error
}

func newFakeSchemaManager() *fakeSchemaManager {
	return &fakeSchemaManager{
		schemas: make(map[string]bool),
		applied: make(map[string]map[string]bool),
	}
}

func (m *fakeSchemaManager) CreateSchema(ctx context.Context, schema string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.schemas[schema] = true
	return nil
}

func (m *fakeSchemaManager) DropSchema(ctx context.Context, schema string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.schemas, schema)
	delete(m.applied, schema)
	m.dropped = append(m.dropped, schema)
	return nil
}

func (m *fakeSchemaManager) EnsureMigrationsTable(ctx context.Context, schema string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.applied[schema] == nil {
		m.applied[schema] = make(map[string]bool)
	}
	return nil
}

func (m *fakeSchemaManager) AppliedVersions(ctx context.Context, schema string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]bool, len(m.applied[schema]))
	for v := range m.applied[schema] {
		out[v] = true
	}
	return out, nil
}

func (m *fakeSchemaManager) ApplyStep(ctx context.Context, schema string, step migrations.Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failApply != nil {
		if err := m.failApply(schema, step.Version); err != nil {
			return err
		}
	}
	if m.applied[schema] == nil {
		m.applied[schema] = make(map[string]bool)
	}
	m.applied[schema][step.Version] = true
	m.calls = append(m.calls, fmt.Sprintf("%s/%s", schema, step.Version))
	return nil
}

func (m *fakeSchemaManager) appliedIn(schema string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.applied[schema])
}

func (m *fakeSchemaManager) hasSchema(schema string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.schemas[schema]
}

// fakeTenantCache is an in-memory TenantCache
type fakeTenantCache struct {
	mu           sync.Mutex
	entries      map[string]*domain.Tenant
	sets         int
	invalidations []string
}

func newFakeTenantCache() *fakeTenantCache {
	return &fakeTenantCache{entries: make(map[string]*domain.Tenant)}
}

func (c *fakeTenantCache) Get(ctx context.Context, hostname string) (*domain.Tenant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tenant, ok := c.entries[hostname]
	if !ok {
		return nil, nil
	}
	copied := *tenant
	return &copied, nil
}

func (c *fakeTenantCache) Set(ctx context.Context, hostname string, tenant *domain.Tenant) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *tenant
	c.entries[hostname] = &copied
	c.sets++
	return nil
}

func (c *fakeTenantCache) Invalidate(ctx context.Context, hostname string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, hostname)
	c.invalidations = append(c.invalidations, hostname)
	return nil
}

func (c *fakeTenantCache) cached(hostname string) (*domain.Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tenant, ok := c.entries[hostname]
	return tenant, ok
}

// fakeNotifier records migration reports
type fakeNotifier struct {
	mu        sync.Mutex
	summaries []*domain.MigrationSummary
}

func (n *fakeNotifier) SendMigrationReport(ctx context.Context, summary *domain.MigrationSummary) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.summaries = append(n.summaries, summary)
	return nil
}
