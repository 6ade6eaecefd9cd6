package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_PBKDF2KnownVector(t *testing.T) {
	// RFC 7914 section 11, first 32 bytes of the 64-byte output.
	key, err := DeriveKey([]byte("passwd"), []byte("salt"), KDFParams{Algorithm: KDFPBKDF2SHA256, Iterations: 1})
	require.NoError(t, err)
	assert.Equal(t, "55ac046e56e3089fec1691c22544b605f94185216dde0465e68b9d57c20dacbc", hex.EncodeToString(key))
}

func TestDeriveKey_Argon2idKnownOutput(t *testing.T) {
	// Argon2id v1.3, t=1, m=64 MiB, p=4, no secret or associated data.
	key, err := DeriveKey([]byte("secret-password"), []byte("fixed-salt"), KDFParams{Algorithm: KDFArgon2id, Iterations: 1})
	require.NoError(t, err)
	assert.Equal(t, "9290403300158e19f27e48e7087f7383b03065bf5b25ef23ebc40229616cd8b3", hex.EncodeToString(key))
}

func TestDeriveKey_Deterministic(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	for _, p := range []KDFParams{
		{Algorithm: KDFPBKDF2SHA256, Iterations: 1000},
		{Algorithm: KDFArgon2id, Iterations: 1},
	} {
		t.Run(string(p.Algorithm), func(t *testing.T) {
			k1, err := DeriveKey([]byte("Correct-Horse1"), salt, p)
			require.NoError(t, err)
			k2, err := DeriveKey([]byte("Correct-Horse1"), salt, p)
			require.NoError(t, err)

			assert.Equal(t, k1, k2)
			assert.Len(t, k1, KeySize)
		})
	}
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	p := KDFParams{Algorithm: KDFPBKDF2SHA256, Iterations: 1000}

	base, err := DeriveKey([]byte("secret-password"), []byte("salt-1"), p)
	require.NoError(t, err)

	otherSalt, err := DeriveKey([]byte("secret-password"), []byte("salt-2"), p)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherSalt)

	otherPass, err := DeriveKey([]byte("secret-passwore"), []byte("salt-1"), p)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherPass)

	argon, err := DeriveKey([]byte("secret-password"), []byte("salt-1"), KDFParams{Algorithm: KDFArgon2id, Iterations: 1})
	require.NoError(t, err)
	assert.NotEqual(t, base, argon)
}

func TestDeriveKey_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		salt []byte
		p    KDFParams
		want error
	}{
		{"unknown algorithm", []byte("salt"), KDFParams{Algorithm: "scrypt", Iterations: 1}, ErrUnsupportedKDF},
		{"zero iterations", []byte("salt"), KDFParams{Algorithm: KDFPBKDF2SHA256}, ErrInvalidKDF},
		{"empty salt", nil, DefaultKDFParams(), ErrInvalidKDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveKey([]byte("pw"), tt.salt, tt.p)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefaultKDFParams(t *testing.T) {
	p := DefaultKDFParams()
	assert.Equal(t, KDFPBKDF2SHA256, p.Algorithm)
	assert.Equal(t, uint32(600_000), p.Iterations)
	assert.NoError(t, p.Validate())
}

func TestNewSalt(t *testing.T) {
	s1, err := NewSalt()
	require.NoError(t, err)
	s2, err := NewSalt()
	require.NoError(t, err)

	assert.Len(t, s1, SaltSize)
	assert.NotEqual(t, s1, s2)
}
