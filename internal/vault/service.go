package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/generator"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/models"
	"github.com/dmitrijs2005/gophvault/internal/session"
	"github.com/google/uuid"
)

const (
	fieldPassword = "password"
	fieldNotes    = "notes"

	maxFieldLength = 4096
)

// Status is the externally visible vault state.
type Status struct {
	Initialized bool
	State       session.State
	ExpiresAt   time.Time
}

type Option func(*Service)

// WithKDF sets the derivation used by Setup. Login always uses the
// parameters stored in the master key record.
func WithKDF(p cryptox.KDFParams) Option {
	return func(s *Service) {
		s.kdf = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	store RecordStore
	sess  *session.Session
	log   logging.Logger
	kdf   cryptox.KDFParams
	now   func() time.Time
	newID func() string
}

func NewService(store RecordStore, sess *session.Session, log logging.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		sess:  sess,
		log:   log.With("module", "vault"),
		kdf:   cryptox.DefaultKDFParams(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Session() *session.Session {
	return s.sess
}

func (s *Service) Status(ctx context.Context) (Status, error) {
	initialized := true
	if _, err := s.store.LoadMasterKeyRecord(ctx); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return Status{}, fmt.Errorf("load master key record: %w", err)
		}
		initialized = false
	}

	snap := s.sess.Snapshot()
	return Status{Initialized: initialized, State: snap.State, ExpiresAt: snap.ExpiresAt}, nil
}

// Setup creates the master key record and leaves the vault Unlocked. It
// returns the new session generation.
func (s *Service) Setup(ctx context.Context, passphrase []byte) (uint64, error) {
	if _, err := s.store.LoadMasterKeyRecord(ctx); err == nil {
		return 0, common.ErrAlreadyInitialized
	} else if !errors.Is(err, common.ErrorNotFound) {
		return 0, fmt.Errorf("load master key record: %w", err)
	}

	if utf8.RuneCount(passphrase) < common.MinPassphraseLength {
		return 0, common.ErrPassphraseTooShort
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return 0, err
	}
	key, err := cryptox.DeriveKey(passphrase, salt, s.kdf)
	if err != nil {
		return 0, err
	}
	verifier, err := cryptox.MakeVerifier(key, salt)
	if err != nil {
		common.WipeByteArray(key)
		return 0, err
	}

	rec := models.MasterKeyRecord{
		Salt:       salt,
		KDF:        s.kdf.Algorithm,
		Iterations: s.kdf.Iterations,
		Verifier:   verifier,
		CreatedAt:  s.timestamp(),
	}
	if err := s.store.SaveMasterKeyRecord(ctx, rec); err != nil {
		common.WipeByteArray(key)
		if errors.Is(err, common.ErrAlreadyInitialized) {
			return 0, err
		}
		return 0, fmt.Errorf("save master key record: %w", err)
	}

	gen, err := s.sess.Unlock(key)
	if err != nil {
		return 0, fmt.Errorf("vault initialized but not unlocked: %w", err)
	}

	s.log.Info(ctx, "vault initialized", "kdf", rec.KDF, "iterations", rec.Iterations)
	return gen, nil
}

// Login derives the key from passphrase and unlocks the session if it
// matches the stored verifier. Every mismatch, including a malformed
// record, is reported as common.ErrAuthentication.
func (s *Service) Login(ctx context.Context, passphrase []byte) (uint64, error) {
	if s.sess.State() == session.StateUnlocked {
		return 0, common.ErrAlreadyUnlocked
	}

	rec, err := s.store.LoadMasterKeyRecord(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrNotInitialized
		}
		return 0, fmt.Errorf("load master key record: %w", err)
	}

	if len(rec.Salt) != cryptox.SaltSize || len(rec.Verifier) != cryptox.VerifierSize {
		s.log.Error(ctx, "malformed master key record")
		return 0, common.ErrAuthentication
	}

	key, err := cryptox.DeriveKey(passphrase, rec.Salt, rec.KDFParams())
	if err != nil {
		s.log.Error(ctx, "master key record has unusable kdf parameters", "error", err)
		return 0, common.ErrAuthentication
	}

	if !cryptox.CheckVerifier(key, rec.Salt, rec.Verifier) {
		common.WipeByteArray(key)
		s.log.Warn(ctx, "login rejected")
		return 0, common.ErrAuthentication
	}

	gen, err := s.sess.Unlock(key)
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "vault unlocked")
	return gen, nil
}

// Logout locks the vault. It is idempotent.
func (s *Service) Logout(ctx context.Context) {
	wasUnlocked := s.sess.State() == session.StateUnlocked
	s.sess.Lock()
	if wasUnlocked {
		s.log.Info(ctx, "vault locked")
	}
}

func (s *Service) ListEntries(ctx context.Context) ([]models.PlainEntry, error) {
	var out []models.PlainEntry

	err := s.sess.WithKey(func(key []byte) error {
		entries, err := s.store.ListEntries(ctx)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}

		out = make([]models.PlainEntry, 0, len(entries))
		for _, e := range entries {
			p, err := openEntry(key, e)
			if err != nil {
				s.log.Error(ctx, "entry failed integrity check", "id", e.ID)
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) CreateEntry(ctx context.Context, in models.EntryInput) (models.PlainEntry, error) {
	var out models.PlainEntry

	err := s.sess.WithKey(func(key []byte) error {
		cat, err := validateInput(in)
		if err != nil {
			return err
		}

		now := s.timestamp()
		e := models.Entry{
			ID:        s.newID(),
			Category:  cat,
			Site:      strings.TrimSpace(in.Site),
			URL:       strings.TrimSpace(in.URL),
			Username:  in.Username,
			CreatedAt: now,
			UpdatedAt: now,
		}

		pw, err := sealField(key, e.ID, fieldPassword, in.Password)
		if err != nil {
			return err
		}
		e.PasswordNonce, e.PasswordCiphertext = pw.Nonce, pw.Ciphertext

		if in.Notes != "" {
			notes, err := sealField(key, e.ID, fieldNotes, in.Notes)
			if err != nil {
				return err
			}
			e.NotesNonce, e.NotesCiphertext = notes.Nonce, notes.Ciphertext
		}

		if err := s.store.InsertEntry(ctx, e); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		out = plainFrom(e, in.Password, in.Notes)
		s.log.Info(ctx, "entry created", "id", e.ID, "category", e.Category)
		return nil
	})
	if err != nil {
		return models.PlainEntry{}, err
	}
	return out, nil
}

// UpdateEntry applies the set fields of upd. A new password or notes value
// is sealed under a fresh nonce; an empty notes value removes the notes.
func (s *Service) UpdateEntry(ctx context.Context, id string, upd models.EntryUpdate) (models.PlainEntry, error) {
	var out models.PlainEntry

	err := s.sess.WithKey(func(key []byte) error {
		patch, err := s.buildPatch(key, id, upd)
		if err != nil {
			return err
		}

		e, err := s.store.UpdateEntry(ctx, id, patch)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return fmt.Errorf("update entry: %w", err)
		}

		out, err = openEntry(key, e)
		if err != nil {
			return err
		}
		s.log.Info(ctx, "entry updated", "id", id)
		return nil
	})
	if err != nil {
		return models.PlainEntry{}, err
	}
	return out, nil
}

func (s *Service) buildPatch(key []byte, id string, upd models.EntryUpdate) (models.EntryPatch, error) {
	if id == "" {
		return models.EntryPatch{}, fmt.Errorf("%w: empty id", common.ErrorValidation)
	}
	if upd.Empty() {
		return models.EntryPatch{}, fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}

	p := models.EntryPatch{UpdatedAt: s.timestamp()}

	if upd.Category != nil {
		c, err := models.ParseCategory(*upd.Category)
		if err != nil {
			return models.EntryPatch{}, err
		}
		p.Category = &c
	}
	if upd.Site != nil {
		site := strings.TrimSpace(*upd.Site)
		if site == "" {
			return models.EntryPatch{}, fmt.Errorf("%w: site is required", common.ErrorValidation)
		}
		p.Site = &site
	}
	if upd.URL != nil {
		u := strings.TrimSpace(*upd.URL)
		p.URL = &u
	}
	if upd.Username != nil {
		if *upd.Username == "" {
			return models.EntryPatch{}, fmt.Errorf("%w: username is required", common.ErrorValidation)
		}
		p.Username = upd.Username
	}
	for _, v := range []*string{upd.Site, upd.URL, upd.Username, upd.Password, upd.Notes} {
		if v != nil && len(*v) > maxFieldLength {
			return models.EntryPatch{}, fmt.Errorf("%w: field too long", common.ErrorValidation)
		}
	}

	if upd.Password != nil {
		if *upd.Password == "" {
			return models.EntryPatch{}, fmt.Errorf("%w: password is required", common.ErrorValidation)
		}
		f, err := sealField(key, id, fieldPassword, *upd.Password)
		if err != nil {
			return models.EntryPatch{}, err
		}
		p.Password = &f
	}
	if upd.Notes != nil {
		f := models.SealedField{}
		if *upd.Notes != "" {
			var err error
			if f, err = sealField(key, id, fieldNotes, *upd.Notes); err != nil {
				return models.EntryPatch{}, err
			}
		}
		p.Notes = &f
	}

	return p, nil
}

// DeleteEntry removes an entry. Like every entry operation it needs an
// unlocked session; a Locked vault is reported before the store is touched.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	err := s.sess.WithKey(func([]byte) error {
		if id == "" {
			return fmt.Errorf("%w: empty id", common.ErrorValidation)
		}
		if err := s.store.DeleteEntry(ctx, id); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return fmt.Errorf("delete entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "entry deleted", "id", id)
	return nil
}

func (s *Service) GeneratePassword(_ context.Context, p generator.Policy) (string, error) {
	return generator.Generate(p)
}

// timestamp is truncated to microseconds, the finest precision every
// supported database keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func validateInput(in models.EntryInput) (models.Category, error) {
	cat, err := models.ParseCategory(in.Category)
	if err != nil {
		return "", err
	}
	switch {
	case strings.TrimSpace(in.Site) == "":
		return "", fmt.Errorf("%w: site is required", common.ErrorValidation)
	case in.Username == "":
		return "", fmt.Errorf("%w: username is required", common.ErrorValidation)
	case in.Password == "":
		return "", fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	for _, v := range []string{in.Site, in.URL, in.Username, in.Password, in.Notes} {
		if len(v) > maxFieldLength {
			return "", fmt.Errorf("%w: field too long", common.ErrorValidation)
		}
	}
	return cat, nil
}
