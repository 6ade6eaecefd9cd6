package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/migrations"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/masterkey"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Driver() string { return DriverSQLite }

func (m *SQLiteRepositoryManager) MasterKey(db dbx.DBTX) masterkey.Repository {
	return masterkey.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, migrations.SQLite, "sqlite3", "sqlite")
}
