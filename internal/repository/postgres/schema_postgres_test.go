package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donolu/enterprise-grc-system-sub000/internal/migrations"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository"
)

func setupSchemaManager(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, repository.SchemaManager) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, NewSchemaManager(sqlxDB)
}

func TestApplyStep_AppliesAndRecordsInOneTransaction(t *testing.T) {
	db, mock, manager := setupSchemaManager(t)
	defer db.Close()

	step := migrations.Step{
		Version: "0004_create_risks",
		Scope:   migrations.ScopeTenant,
		SQL:     "CREATE TABLE risks (id UUID PRIMARY KEY)",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL search_path TO "t_acme"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE risks`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations \(version\) VALUES \(\$1\)`).
		WithArgs("0004_create_risks").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := manager.ApplyStep(context.Background(), "t_acme", step)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStep_RollsBackWhenStepFails(t *testing.T) {
	db, mock, manager := setupSchemaManager(t)
	defer db.Close()

	step := migrations.Step{
		Version: "0004_create_risks",
		Scope:   migrations.ScopeTenant,
		SQL:     "CREATE TABLE risks (id UUID PRIMARY KEY)",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL search_path TO "t_acme"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE risks`).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := manager.ApplyStep(context.Background(), "t_acme", step)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "0004_create_risks")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppliedVersions(t *testing.T) {
	db, mock, manager := setupSchemaManager(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT version FROM "t_acme"\.schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).
			AddRow("0003_create_frameworks").
			AddRow("0004_create_risks"))

	applied, err := manager.AppliedVersions(context.Background(), "t_acme")

	require.NoError(t, err)
	assert.True(t, applied["0003_create_frameworks"])
	assert.True(t, applied["0004_create_risks"])
	assert.False(t, applied["0005_create_vendors"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
