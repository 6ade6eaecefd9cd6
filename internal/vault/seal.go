package vault

import (
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/models"
)

// associatedData binds a ciphertext to its entry and field.
func associatedData(id, field string) []byte {
	return []byte(id + "/" + field)
}

func sealField(key []byte, id, field, value string) (models.SealedField, error) {
	nonce, err := cryptox.NewNonce()
	if err != nil {
		return models.SealedField{}, err
	}
	ct, err := cryptox.Seal(key, nonce, []byte(value), associatedData(id, field))
	if err != nil {
		return models.SealedField{}, err
	}
	return models.SealedField{Nonce: nonce, Ciphertext: ct}, nil
}

func openField(key []byte, id, field string, nonce, ct []byte) (string, error) {
	pt, err := cryptox.Open(key, nonce, ct, associatedData(id, field))
	if err != nil {
		return "", fmt.Errorf("entry %s %s: %w", id, field, err)
	}
	defer common.WipeByteArray(pt)
	return string(pt), nil
}

func openEntry(key []byte, e models.Entry) (models.PlainEntry, error) {
	pw, err := openField(key, e.ID, fieldPassword, e.PasswordNonce, e.PasswordCiphertext)
	if err != nil {
		return models.PlainEntry{}, err
	}

	var notes string
	if e.HasNotes() {
		if notes, err = openField(key, e.ID, fieldNotes, e.NotesNonce, e.NotesCiphertext); err != nil {
			return models.PlainEntry{}, err
		}
	}
	return plainFrom(e, pw, notes), nil
}

func plainFrom(e models.Entry, password, notes string) models.PlainEntry {
	return models.PlainEntry{
		ID:        e.ID,
		Category:  e.Category,
		Site:      e.Site,
		URL:       e.URL,
		Username:  e.Username,
		Password:  password,
		Notes:     notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
