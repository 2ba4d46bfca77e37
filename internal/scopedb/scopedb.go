// Package scopedb is the single chokepoint for tenant-scoped data access.
// Every business read/write runs through WithTenant, which pins the
// transaction's search_path to the schema bound in the request context. No
// API here accepts a caller-chosen schema, and a missing binding fails closed
// with ErrNoTenantContext instead of defaulting anywhere.
package scopedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/donolu/enterprise-grc-system-sub000/internal/tenantctx"
)

type Scoped struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func New(db *sqlx.DB, logger *zap.Logger) *Scoped {
	return &Scoped{db: db, logger: logger}
}

// WithTenant runs fn inside one transaction whose search_path is pinned to
// the schema bound in ctx. SET LOCAL scopes the setting to the transaction,
// so the connection returns to the pool clean on every exit path, commit and
// rollback alike.
func (s *Scoped) WithTenant(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	schema, err := tenantctx.Schema(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tenant transaction: %w", err)
	}
	// Deferred so the transaction is released on every exit path, a panic in
	// fn included; after a successful commit this is a no-op.
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", zap.String("schema", schema), zap.Error(rbErr))
		}
	}()

	if _, err := tx.ExecContext(ctx, "SET LOCAL search_path TO "+pq.QuoteIdentifier(schema)); err != nil {
		return fmt.Errorf("failed to set search_path for schema %s: %w", schema, err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tenant transaction: %w", err)
	}

	return nil
}
