package masterkey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (models.MasterKeyRecord, error) {
	var (
		rec        models.MasterKeyRecord
		kdf        string
		iterations int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT salt, kdf, iterations, verifier, created_at FROM master_key WHERE id = 1`,
	).Scan(&rec.Salt, &kdf, &iterations, &rec.Verifier, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MasterKeyRecord{}, common.ErrorNotFound
	}
	if err != nil {
		return models.MasterKeyRecord{}, fmt.Errorf("failed to select master key: %w", err)
	}

	rec.KDF = cryptox.KDFAlgorithm(kdf)
	rec.Iterations = uint32(iterations)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rec models.MasterKeyRecord) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO master_key (id, salt, kdf, iterations, verifier, created_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, rec.Salt, string(rec.KDF), int64(rec.Iterations), rec.Verifier, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert master key: %w", err)
	}
	return checkCreated(res)
}
