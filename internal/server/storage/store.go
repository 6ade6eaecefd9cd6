// Package storage adapts the SQL repositories to vault.RecordStore.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/models"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
)

var ErrNotEmpty = errors.New("store is not empty")

// DBStore implements vault.RecordStore over a *sql.DB. Multi-step
// operations run in one transaction.
type DBStore struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewDBStore(db *sql.DB, rm repomanager.RepositoryManager) *DBStore {
	return &DBStore{db: db, rm: rm}
}

func (s *DBStore) LoadMasterKeyRecord(ctx context.Context) (models.MasterKeyRecord, error) {
	return s.rm.MasterKey(s.db).Get(ctx)
}

func (s *DBStore) SaveMasterKeyRecord(ctx context.Context, rec models.MasterKeyRecord) error {
	return s.rm.MasterKey(s.db).Create(ctx, rec)
}

func (s *DBStore) ListEntries(ctx context.Context) ([]models.Entry, error) {
	return s.rm.Entries(s.db).List(ctx)
}

func (s *DBStore) GetEntry(ctx context.Context, id string) (models.Entry, error) {
	return s.rm.Entries(s.db).Get(ctx, id)
}

func (s *DBStore) InsertEntry(ctx context.Context, e models.Entry) error {
	return s.rm.Entries(s.db).Insert(ctx, e)
}

// UpdateEntry reads, patches and writes the entry in a single transaction.
func (s *DBStore) UpdateEntry(ctx context.Context, id string, p models.EntryPatch) (models.Entry, error) {
	return dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (models.Entry, error) {
		repo := s.rm.Entries(tx)

		e, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return models.Entry{}, err
		}
		e.Apply(p)
		if err := repo.Update(ctx, e); err != nil {
			return models.Entry{}, err
		}
		return e, nil
	})
}

func (s *DBStore) DeleteEntry(ctx context.Context, id string) error {
	return s.rm.Entries(s.db).Delete(ctx, id)
}

// Snapshot reads the master record and every entry in one transaction.
func (s *DBStore) Snapshot(ctx context.Context) (models.MasterKeyRecord, []models.Entry, error) {
	var (
		rec  models.MasterKeyRecord
		list []models.Entry
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if rec, err = s.rm.MasterKey(tx).Get(ctx); err != nil {
			return err
		}
		list, err = s.rm.Entries(tx).List(ctx)
		return err
	})
	if err != nil {
		return models.MasterKeyRecord{}, nil, err
	}
	return rec, list, nil
}

// Restore writes rec and entries into an empty store in one transaction.
// It fails with ErrNotEmpty if a master record or any entry exists.
func (s *DBStore) Restore(ctx context.Context, rec models.MasterKeyRecord, list []models.Entry) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		mk := s.rm.MasterKey(tx)
		er := s.rm.Entries(tx)

		if _, err := mk.Get(ctx); err == nil {
			return ErrNotEmpty
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		n, err := er.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrNotEmpty
		}

		if err := mk.Create(ctx, rec); err != nil {
			return fmt.Errorf("restore master key: %w", err)
		}
		for _, e := range list {
			if err := er.Insert(ctx, e); err != nil {
				return fmt.Errorf("restore entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}
