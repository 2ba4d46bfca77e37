// Package tenantctx binds a resolved tenant to a request context. The binding
// is carried on context.Context so it lives exactly as long as the request,
// travels with cancellation, and is invisible to every other request. There is
// no package-level state.
package tenantctx

import (
	"context"

	"github.com/google/uuid"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
)

type ctxKey struct{}

// TenantContext is the request-scoped outcome of a successful resolution.
// It is set once per request and never rebound.
type TenantContext struct {
	TenantID   uuid.UUID
	Slug       string
	SchemaName string
}

// With returns a child context carrying the tenant binding
func With(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// From extracts the tenant binding from ctx
func From(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(ctxKey{}).(*TenantContext)
	return tc, ok
}

// Schema returns the schema name bound to ctx, or ErrNoTenantContext.
// Callers that must fail closed go through this.
func Schema(ctx context.Context) (string, error) {
	tc, ok := From(ctx)
	if !ok {
		return "", domain.ErrNoTenantContext
	}
	return tc.SchemaName, nil
}

// FromTenant builds the binding for a resolved tenant record
func FromTenant(t *domain.Tenant) *TenantContext {
	return &TenantContext{
		TenantID:   t.ID,
		Slug:       t.Slug,
		SchemaName: t.SchemaName,
	}
}
