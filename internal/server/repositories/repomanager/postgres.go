package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/migrations"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/masterkey"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Driver() string { return DriverPostgres }

func (m *PostgresRepositoryManager) MasterKey(db dbx.DBTX) masterkey.Repository {
	return masterkey.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, migrations.Postgres, "pgx", "postgres")
}
