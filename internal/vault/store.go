package vault

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/models"
)

// RecordStore persists the master key record and encrypted entries. Each
// call must be durable and atomic; Service never retries a failed call.
type RecordStore interface {
	// LoadMasterKeyRecord returns common.ErrorNotFound before setup.
	LoadMasterKeyRecord(ctx context.Context) (models.MasterKeyRecord, error)
	// SaveMasterKeyRecord is write-once and returns
	// common.ErrAlreadyInitialized if a record exists.
	SaveMasterKeyRecord(ctx context.Context, rec models.MasterKeyRecord) error

	// ListEntries returns all entries ordered by creation time, then id.
	ListEntries(ctx context.Context) ([]models.Entry, error)
	InsertEntry(ctx context.Context, e models.Entry) error
	// UpdateEntry applies p to the stored entry in a single transaction
	// and returns the result.
	UpdateEntry(ctx context.Context, id string, p models.EntryPatch) (models.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}
