// Package entries stores encrypted vault entries. Repositories move rows
// verbatim; they never see plaintext.
package entries

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/models"
)

type Repository interface {
	// List returns all entries ordered by created_at, then id.
	List(ctx context.Context) ([]models.Entry, error)
	// Get returns common.ErrorNotFound for an unknown id.
	Get(ctx context.Context, id string) (models.Entry, error)
	// GetForUpdate is Get that also locks the row until the surrounding
	// transaction ends, where the database supports row locks.
	GetForUpdate(ctx context.Context, id string) (models.Entry, error)
	Insert(ctx context.Context, e models.Entry) error
	// Update overwrites every mutable column of the row with e.ID.
	Update(ctx context.Context, e models.Entry) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
