package vault

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/models"
)

// memStore is an in-memory RecordStore that counts every call.
type memStore struct {
	mu      sync.Mutex
	rec     *models.MasterKeyRecord
	entries map[string]models.Entry
	calls   map[string]int
	failOn  map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[string]models.Entry),
		calls:   make(map[string]int),
		failOn:  make(map[string]error),
	}
}

func (m *memStore) enter(name string) error {
	m.calls[name]++
	return m.failOn[name]
}

func (m *memStore) entryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls["ListEntries"] + m.calls["InsertEntry"] + m.calls["UpdateEntry"] + m.calls["DeleteEntry"]
}

func (m *memStore) LoadMasterKeyRecord(context.Context) (models.MasterKeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("LoadMasterKeyRecord"); err != nil {
		return models.MasterKeyRecord{}, err
	}
	if m.rec == nil {
		return models.MasterKeyRecord{}, common.ErrorNotFound
	}
	return *m.rec, nil
}

func (m *memStore) SaveMasterKeyRecord(_ context.Context, rec models.MasterKeyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SaveMasterKeyRecord"); err != nil {
		return err
	}
	if m.rec != nil {
		return common.ErrAlreadyInitialized
	}
	m.rec = &rec
	return nil
}

func (m *memStore) ListEntries(context.Context) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListEntries"); err != nil {
		return nil, err
	}
	out := make([]models.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// stored returns the raw sealed entry without counting a call.
func (m *memStore) stored(id string) (models.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *memStore) InsertEntry(_ context.Context, e models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("InsertEntry"); err != nil {
		return err
	}
	m.entries[e.ID] = e
	return nil
}

func (m *memStore) UpdateEntry(_ context.Context, id string, p models.EntryPatch) (models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateEntry"); err != nil {
		return models.Entry{}, err
	}
	e, ok := m.entries[id]
	if !ok {
		return models.Entry{}, common.ErrorNotFound
	}
	e.Apply(p)
	m.entries[id] = e
	return e, nil
}

func (m *memStore) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteEntry"); err != nil {
		return err
	}
	if _, ok := m.entries[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.entries, id)
	return nil
}
