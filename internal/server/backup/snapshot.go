// Package backup exports the vault to zstd-compressed JSON snapshots and
// restores them into an empty store. Snapshots hold only what is persisted:
// the master key record and encrypted entries. No key material or
// plaintext is ever written.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/models"
	"github.com/klauspost/compress/zstd"
)

const FormatVersion = 1

var ErrInvalidSnapshot = errors.New("invalid snapshot")

type Snapshot struct {
	Version   int                    `json:"version"`
	CreatedAt time.Time              `json:"created_at"`
	MasterKey models.MasterKeyRecord `json:"master_key"`
	Entries   []models.Entry         `json:"entries"`
}

// Validate checks structure only; ciphertext integrity is verified on the
// first unlock after restore.
func (s *Snapshot) Validate() error {
	if s.Version != FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, s.Version)
	}
	mk := s.MasterKey
	if len(mk.Salt) != cryptox.SaltSize || len(mk.Verifier) != cryptox.VerifierSize {
		return fmt.Errorf("%w: malformed master key record", ErrInvalidSnapshot)
	}
	if err := mk.KDFParams().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	seen := make(map[string]struct{}, len(s.Entries))
	for _, e := range s.Entries {
		if e.ID == "" {
			return fmt.Errorf("%w: entry without id", ErrInvalidSnapshot)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate entry %s", ErrInvalidSnapshot, e.ID)
		}
		seen[e.ID] = struct{}{}

		if !e.Category.Valid() {
			return fmt.Errorf("%w: entry %s has unknown category", ErrInvalidSnapshot, e.ID)
		}
		if len(e.PasswordNonce) != cryptox.NonceSize || len(e.PasswordCiphertext) == 0 {
			return fmt.Errorf("%w: entry %s has malformed password", ErrInvalidSnapshot, e.ID)
		}
		if e.HasNotes() && len(e.NotesNonce) != cryptox.NonceSize {
			return fmt.Errorf("%w: entry %s has malformed notes", ErrInvalidSnapshot, e.ID)
		}
	}
	return nil
}

// Write encodes s as zstd-compressed JSON.
func Write(w io.Writer, s *Snapshot) (err error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	defer func() {
		if cerr := zw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close zstd writer: %w", cerr)
		}
	}()

	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Read decodes and validates a snapshot produced by Write.
func Read(r io.Reader) (*Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	var s Snapshot
	if err := json.NewDecoder(zr).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidSnapshot, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
