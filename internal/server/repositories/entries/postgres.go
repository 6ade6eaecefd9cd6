package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/models"
)

const postgresColumns = `id, category, site, url, username, password_nonce, password_ciphertext,
	notes_nonce, notes_ciphertext, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanPostgres(s scanner) (models.Entry, error) {
	var (
		e        models.Entry
		category string
	)
	if err := s.Scan(&e.ID, &category, &e.Site, &e.URL, &e.Username,
		&e.PasswordNonce, &e.PasswordCiphertext, &e.NotesNonce, &e.NotesCiphertext,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.Entry{}, err
	}
	e.Category = models.Category(category)
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postgresColumns+` FROM entries ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		e, err := scanPostgres(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry rows: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) get(ctx context.Context, query, id string) (models.Entry, error) {
	e, err := scanPostgres(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, common.ErrorNotFound
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to select entry: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (models.Entry, error) {
	return r.get(ctx, `SELECT `+postgresColumns+` FROM entries WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (models.Entry, error) {
	return r.get(ctx, `SELECT `+postgresColumns+` FROM entries WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) Insert(ctx context.Context, e models.Entry) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO entries (`+postgresColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, string(e.Category), e.Site, e.URL, e.Username,
		e.PasswordNonce, e.PasswordCiphertext, nullBytes(e.NotesNonce), nullBytes(e.NotesCiphertext),
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, e models.Entry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET category = $1, site = $2, url = $3, username = $4,
			password_nonce = $5, password_ciphertext = $6, notes_nonce = $7, notes_ciphertext = $8,
			updated_at = $9
		WHERE id = $10`,
		string(e.Category), e.Site, e.URL, e.Username,
		e.PasswordNonce, e.PasswordCiphertext, nullBytes(e.NotesNonce), nullBytes(e.NotesCiphertext),
		e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}
