package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/models"
)

const sqliteColumns = `id, category, site, url, username, password_nonce, password_ciphertext,
	notes_nonce, notes_ciphertext, created_at, updated_at`

// SQLiteRepository keeps timestamps as unix microseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(s scanner) (models.Entry, error) {
	var (
		e                models.Entry
		category         string
		created, updated int64
	)
	if err := s.Scan(&e.ID, &category, &e.Site, &e.URL, &e.Username,
		&e.PasswordNonce, &e.PasswordCiphertext, &e.NotesNonce, &e.NotesCiphertext,
		&created, &updated); err != nil {
		return models.Entry{}, err
	}
	e.Category = models.Category(category)
	e.CreatedAt = time.UnixMicro(created).UTC()
	e.UpdatedAt = time.UnixMicro(updated).UTC()
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM entries ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		e, err := scanSQLite(rows)
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

func (r *SQLiteRepository) Get(ctx context.Context, id string) (models.Entry, error) {
	e, err := scanSQLite(r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, common.ErrorNotFound
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to select entry: %w", err)
	}
	return e, nil
}

// GetForUpdate is Get; SQLite serializes writers at the database level.
func (r *SQLiteRepository) GetForUpdate(ctx context.Context, id string) (models.Entry, error) {
	return r.Get(ctx, id)
}

func (r *SQLiteRepository) Insert(ctx context.Context, e models.Entry) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO entries (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Category), e.Site, e.URL, e.Username,
		e.PasswordNonce, e.PasswordCiphertext, nullBytes(e.NotesNonce), nullBytes(e.NotesCiphertext),
		e.CreatedAt.UnixMicro(), e.UpdatedAt.UnixMicro())
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, e models.Entry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET category = ?, site = ?, url = ?, username = ?,
			password_nonce = ?, password_ciphertext = ?, notes_nonce = ?, notes_ciphertext = ?,
			updated_at = ?
		WHERE id = ?`,
		string(e.Category), e.Site, e.URL, e.Username,
		e.PasswordNonce, e.PasswordCiphertext, nullBytes(e.NotesNonce), nullBytes(e.NotesCiphertext),
		e.UpdatedAt.UnixMicro(), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return expectOne(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return expectOne(res)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}
