package cryptox

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	return bytes.Repeat([]byte{0x42}, KeySize)
}

func flipBit(b []byte, bit int) []byte {
	out := append([]byte(nil), b...)
	out[bit/8] ^= 1 << (bit % 8)
	return out
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := testKey(t)
	for _, pt := range [][]byte{
		[]byte("hunter2"),
		{},
		bytes.Repeat([]byte("x"), 4096),
	} {
		nonce, err := NewNonce()
		require.NoError(t, err)

		ct, err := Seal(key, nonce, pt, []byte("aad"))
		require.NoError(t, err)
		assert.Len(t, ct, len(pt)+16)

		got, err := Open(key, nonce, ct, []byte("aad"))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(pt, got))
	}
}

func TestOpen_TamperDetection(t *testing.T) {
	key := testKey(t)
	nonce, err := NewNonce()
	require.NoError(t, err)
	aad := []byte("entry-id/password")

	ct, err := Seal(key, nonce, []byte("hunter2"), aad)
	require.NoError(t, err)

	// ciphertext bytes and the trailing tag
	for bit := 0; bit < len(ct)*8; bit++ {
		_, err := Open(key, nonce, flipBit(ct, bit), aad)
		require.ErrorIs(t, err, common.ErrIntegrity, "ciphertext bit %d", bit)
	}
	for bit := 0; bit < len(nonce)*8; bit++ {
		_, err := Open(key, flipBit(nonce, bit), ct, aad)
		require.ErrorIs(t, err, common.ErrIntegrity, "nonce bit %d", bit)
	}
	for bit := 0; bit < len(aad)*8; bit++ {
		_, err := Open(key, nonce, ct, flipBit(aad, bit))
		require.ErrorIs(t, err, common.ErrIntegrity, "aad bit %d", bit)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)
	ct, err := Seal(testKey(t), nonce, []byte("hunter2"), nil)
	require.NoError(t, err)

	other := bytes.Repeat([]byte{0x43}, KeySize)
	pt, err := Open(other, nonce, ct, nil)
	require.ErrorIs(t, err, common.ErrIntegrity)
	assert.Nil(t, pt)
}

func TestOpen_Malformed(t *testing.T) {
	key := testKey(t)
	nonce, err := NewNonce()
	require.NoError(t, err)

	_, err = Open(key, nonce, []byte("short"), nil)
	require.ErrorIs(t, err, common.ErrIntegrity)

	_, err = Open(key, nonce[:8], make([]byte, 32), nil)
	require.ErrorIs(t, err, common.ErrIntegrity)
}

func TestSeal_InvalidInput(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)

	_, err = Seal([]byte("short-key"), nonce, []byte("x"), nil)
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = Seal(testKey(t), []byte("bad"), []byte("x"), nil)
	require.ErrorIs(t, err, ErrInvalidNonce)
}

func TestNewNonce_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		n, err := NewNonce()
		require.NoError(t, err)
		require.Len(t, n, NonceSize)
		_, dup := seen[string(n)]
		require.False(t, dup)
		seen[string(n)] = struct{}{}
	}
}

func TestSeal_SamePlaintextDifferentNonce(t *testing.T) {
	key := testKey(t)
	n1, _ := NewNonce()
	n2, _ := NewNonce()

	c1, err := Seal(key, n1, []byte("same"), nil)
	require.NoError(t, err)
	c2, err := Seal(key, n2, []byte("same"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2)
}
