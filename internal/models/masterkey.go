package models

import (
	"time"

	"github.com/dmitrijs2005/gophvault/internal/cryptox"
)

// MasterKeyRecord is written once at setup and never modified.
type MasterKeyRecord struct {
	Salt       []byte               `json:"salt"`
	KDF        cryptox.KDFAlgorithm `json:"kdf"`
	Iterations uint32               `json:"iterations"`
	Verifier   []byte               `json:"verifier"`
	CreatedAt  time.Time            `json:"created_at"`
}

func (r MasterKeyRecord) KDFParams() cryptox.KDFParams {
	return cryptox.KDFParams{Algorithm: r.KDF, Iterations: r.Iterations}
}
