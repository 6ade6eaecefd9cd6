package masterkey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/models"
)

// SQLiteRepository keeps timestamps as unix microseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (models.MasterKeyRecord, error) {
	var (
		rec     models.MasterKeyRecord
		kdf     string
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT salt, kdf, iterations, verifier, created_at FROM master_key WHERE id = 1`,
	).Scan(&rec.Salt, &kdf, &rec.Iterations, &rec.Verifier, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MasterKeyRecord{}, common.ErrorNotFound
	}
	if err != nil {
		return models.MasterKeyRecord{}, fmt.Errorf("failed to select master key: %w", err)
	}

	rec.KDF = cryptox.KDFAlgorithm(kdf)
	rec.CreatedAt = time.UnixMicro(created).UTC()
	return rec, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, rec models.MasterKeyRecord) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO master_key (id, salt, kdf, iterations, verifier, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rec.Salt, string(rec.KDF), rec.Iterations, rec.Verifier, rec.CreatedAt.UnixMicro())
	if err != nil {
		return fmt.Errorf("failed to insert master key: %w", err)
	}
	return checkCreated(res)
}

func checkCreated(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrAlreadyInitialized
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
