// Package masterkey stores the singleton master key record. The table holds
// at most one row (id = 1); Create never overwrites it.
package masterkey

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when no record exists.
	Get(ctx context.Context) (models.MasterKeyRecord, error)
	// Create returns common.ErrAlreadyInitialized when a record exists.
	Create(ctx context.Context, rec models.MasterKeyRecord) error
}
