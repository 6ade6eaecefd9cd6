package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/masterkey"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New(DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, m.Driver())

	m, err = New(DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, m.Driver())

	_, err = New("mysql")
	require.Error(t, err)
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sm := &SQLiteRepositoryManager{}
	assert.IsType(t, &masterkey.SQLiteRepository{}, sm.MasterKey(db))
	assert.IsType(t, &entries.SQLiteRepository{}, sm.Entries(db))

	pm := &PostgresRepositoryManager{}
	assert.IsType(t, &masterkey.PostgresRepository{}, pm.MasterKey(db))
	assert.IsType(t, &entries.PostgresRepository{}, pm.Entries(db))
}

func TestRunMigrations_PostgresSeam(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, (&PostgresRepositoryManager{}).RunMigrations(context.Background(), db))
	assert.Equal(t, "postgres", gotDir)

	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}
	require.ErrorIs(t, (&PostgresRepositoryManager{}).RunMigrations(context.Background(), db), boom)
}

func TestSQLite_OpenMigrateUse(t *testing.T) {
	db, m, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx, db))
	// idempotent
	require.NoError(t, m.RunMigrations(ctx, db))

	_, err = m.MasterKey(db).Get(ctx)
	require.ErrorIs(t, err, common.ErrorNotFound)

	n, err := m.Entries(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open("oracle", "dsn")
	require.Error(t, err)
}
