// Package repomanager vends dialect-specific repositories and runs the
// embedded goose migrations for the selected database.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync"

	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/masterkey"
	"github.com/pressly/goose/v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type RepositoryManager interface {
	// Driver is DriverSQLite or DriverPostgres.
	Driver() string
	RunMigrations(ctx context.Context, db *sql.DB) error
	MasterKey(db dbx.DBTX) masterkey.Repository
	Entries(db dbx.DBTX) entries.Repository
}

// New returns the manager for driver.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverSQLite:
		return &SQLiteRepositoryManager{}, nil
	case DriverPostgres:
		return &PostgresRepositoryManager{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open opens dsn with the database/sql driver behind driver and returns it
// together with its manager. Migrations are not run.
func Open(driver, dsn string) (*sql.DB, RepositoryManager, error) {
	m, err := New(driver)
	if err != nil {
		return nil, nil, err
	}

	sqlDriver := "pgx"
	if driver == DriverSQLite {
		sqlDriver = "sqlite"
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if driver == DriverSQLite {
		// one writer at a time; also keeps :memory: databases on one connection
		db.SetMaxOpenConns(1)
	}
	return db, m, nil
}

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func runMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, dir)
}
