package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound means no domain record matches the requested hostname
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrNoTenantContext means a scoped data operation ran without a bound
	// tenant context. The scoped layer fails closed instead of defaulting to
	// any schema.
	ErrNoTenantContext = errors.New("no tenant bound to context")
)

// ValidationError reports a caller-supplied value that fails registry
// validation. It maps to a 400, unlike internal failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a duplicate slug, schema name or hostname
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// InvalidStateTransitionError reports a lifecycle transition outside the legal table
type InvalidStateTransitionError struct {
	From TenantStatus
	To   TenantStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid tenant state transition: %s -> %s", e.From, e.To)
}

// TenantUnavailableError reports resolution of a tenant that exists but is not
// active. Status lets callers distinguish suspended from archived.
type TenantUnavailableError struct {
	Slug   string
	Status TenantStatus
}

func (e *TenantUnavailableError) Error() string {
	return fmt.Sprintf("tenant %q is %s", e.Slug, e.Status)
}

// ProvisioningError reports a failed provision attempt. The schema has been
// rolled back and the tenant remains in provisioning, so the operation is
// safe to retry.
type ProvisioningError struct {
	SchemaName string
	Err        error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning schema %s: %v", e.SchemaName, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// MigrationStepError reports one structural change failing in one schema
type MigrationStepError struct {
	SchemaName string
	Version    string
	Err        error
}

func (e *MigrationStepError) Error() string {
	return fmt.Sprintf("migration %s failed in schema %s: %v", e.Version, e.SchemaName, e.Err)
}

func (e *MigrationStepError) Unwrap() error {
	return e.Err
}
