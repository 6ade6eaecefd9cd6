package models

import "time"

// Entry is the persisted form. Password and notes are AES-GCM ciphertext
// (tag appended) with their own nonces; notes may be absent.
type Entry struct {
	ID                 string    `json:"id"`
	Category           Category  `json:"category"`
	Site               string    `json:"site"`
	URL                string    `json:"url"`
	Username           string    `json:"username"`
	PasswordNonce      []byte    `json:"password_nonce"`
	PasswordCiphertext []byte    `json:"password_ciphertext"`
	NotesNonce         []byte    `json:"notes_nonce,omitempty"`
	NotesCiphertext    []byte    `json:"notes_ciphertext,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (e Entry) HasNotes() bool {
	return len(e.NotesCiphertext) > 0
}

// PlainEntry is an Entry with password and notes decrypted.
type PlainEntry struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Site      string    `json:"site"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryInput carries the fields of a new entry.
type EntryInput struct {
	Category string `json:"category"`
	Site     string `json:"site"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Notes    string `json:"notes"`
}

// EntryUpdate carries a partial update; nil fields are left unchanged.
// An empty Notes clears the notes.
type EntryUpdate struct {
	Category *string `json:"category,omitempty"`
	Site     *string `json:"site,omitempty"`
	URL      *string `json:"url,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

func (u EntryUpdate) Empty() bool {
	return u.Category == nil && u.Site == nil && u.URL == nil &&
		u.Username == nil && u.Password == nil && u.Notes == nil
}

// SealedField is a nonce and its ciphertext. A zero value clears the field.
type SealedField struct {
	Nonce      []byte
	Ciphertext []byte
}

// EntryPatch is the storage-level form of an update: plaintext metadata and
// already sealed secrets.
type EntryPatch struct {
	Category  *Category
	Site      *string
	URL       *string
	Username  *string
	Password  *SealedField
	Notes     *SealedField
	UpdatedAt time.Time
}

// Apply writes the set fields of p into e.
func (e *Entry) Apply(p EntryPatch) {
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Site != nil {
		e.Site = *p.Site
	}
	if p.URL != nil {
		e.URL = *p.URL
	}
	if p.Username != nil {
		e.Username = *p.Username
	}
	if p.Password != nil {
		e.PasswordNonce = p.Password.Nonce
		e.PasswordCiphertext = p.Password.Ciphertext
	}
	if p.Notes != nil {
		e.NotesNonce = p.Notes.Nonce
		e.NotesCiphertext = p.Notes.Ciphertext
	}
	if !p.UpdatedAt.IsZero() {
		e.UpdatedAt = p.UpdatedAt
	}
}
