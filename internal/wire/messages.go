package wire

import (
	"time"

	"github.com/dmitrijs2005/gophvault/internal/generator"
	"github.com/dmitrijs2005/gophvault/internal/models"
)

type StatusRequest struct{}

type StatusResponse struct {
	Initialized bool       `json:"initialized"`
	State       string     `json:"state"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type SetupRequest struct {
	Passphrase string `json:"passphrase"`
}

type LoginRequest struct {
	Passphrase string `json:"passphrase"`
}

// SessionResponse is returned by setup and login.
type SessionResponse struct {
	SessionToken string `json:"session_token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type ListEntriesRequest struct{}

type ListEntriesResponse struct {
	Entries []models.PlainEntry `json:"entries"`
}

type CreateEntryRequest struct {
	Entry models.EntryInput `json:"entry"`
}

type UpdateEntryRequest struct {
	ID     string             `json:"id"`
	Update models.EntryUpdate `json:"update"`
}

type EntryResponse struct {
	Entry models.PlainEntry `json:"entry"`
}

type DeleteEntryRequest struct {
	ID string `json:"id"`
}

type DeleteEntryResponse struct{}

// GeneratePasswordRequest uses the default policy when Policy is nil.
type GeneratePasswordRequest struct {
	Policy *generator.Policy `json:"policy,omitempty"`
}

type GeneratePasswordResponse struct {
	Password string `json:"password"`
}

type BackupRequest struct{}

type BackupResponse struct {
	Path    string `json:"path"`
	Key     string `json:"key,omitempty"`
	Entries int    `json:"entries"`
	Size    int    `json:"size"`
}
