package migrations

// Scope says which kind of schema a step targets. Shared steps run once
// against the shared schema; tenant steps run once per tenant schema.
type Scope string

const (
	ScopeShared Scope = "shared"
	ScopeTenant Scope = "tenant"
)

// Step is one versioned structural change. Versions are ordered
// lexicographically and never reused; applied versions are tracked in the
// schema_migrations table of each target schema.
type Step struct {
	Version string
	Scope   Scope
	SQL     string
}

// steps is the ordered registry of every structural change the platform has
// shipped. Append only.
var steps = []Step{
	{
		Version: "0001_create_tenants",
		Scope:   ScopeShared,
		SQL: `
			CREATE TABLE IF NOT EXISTS tenants (
				id UUID PRIMARY KEY,
				schema_name VARCHAR(63) NOT NULL UNIQUE,
				display_name VARCHAR(255) NOT NULL,
				slug VARCHAR(63) NOT NULL UNIQUE,
				status VARCHAR(20) NOT NULL CHECK (status IN ('provisioning', 'active', 'suspended', 'archived')),
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_tenants_status ON tenants(status);`,
	},
	{
		Version: "0002_create_domains",
		Scope:   ScopeShared,
		SQL: `
			CREATE TABLE IF NOT EXISTS domains (
				id UUID PRIMARY KEY,
				tenant_id UUID NOT NULL REFERENCES tenants(id),
				hostname VARCHAR(253) NOT NULL UNIQUE,
				is_primary BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_domains_tenant ON domains(tenant_id);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_domains_one_primary
				ON domains(tenant_id) WHERE is_primary;`,
	},
	{
		Version: "0003_create_frameworks",
		Scope:   ScopeTenant,
		SQL: `
			CREATE TABLE frameworks (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				version VARCHAR(50),
				description TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE TABLE controls (
				id UUID PRIMARY KEY,
				framework_id UUID NOT NULL REFERENCES frameworks(id) ON DELETE CASCADE,
				code VARCHAR(50) NOT NULL,
				title VARCHAR(255) NOT NULL,
				description TEXT,
				status VARCHAR(20) NOT NULL DEFAULT 'not_assessed',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (framework_id, code)
			);`,
	},
	{
		Version: "0004_create_risks",
		Scope:   ScopeTenant,
		SQL: `
			CREATE TABLE risks (
				id UUID PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				description TEXT,
				likelihood SMALLINT NOT NULL CHECK (likelihood BETWEEN 1 AND 5),
				impact SMALLINT NOT NULL CHECK (impact BETWEEN 1 AND 5),
				status VARCHAR(20) NOT NULL DEFAULT 'open',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX idx_risks_status ON risks(status);`,
	},
	{
		Version: "0005_create_vendors",
		Scope:   ScopeTenant,
		SQL: `
			CREATE TABLE vendors (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				contact_email VARCHAR(255),
				tier VARCHAR(20) NOT NULL DEFAULT 'standard',
				review_due_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);`,
	},
}

// All returns every registered step in application order
func All() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// ForScope returns the registered steps for one scope, in application order
func ForScope(scope Scope) []Step {
	var out []Step
	for _, s := range steps {
		if s.Scope == scope {
			out = append(out, s)
		}
	}
	return out
}
