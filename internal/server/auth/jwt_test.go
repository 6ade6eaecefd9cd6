package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	t.Parallel()
	i := NewIssuer(time.Hour)

	tok, err := i.Issue(42)
	require.NoError(t, err)

	gen, err := i.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), gen)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()
	i := NewIssuer(time.Minute)
	start := time.Now()
	i.now = func() time.Time { return start }

	tok, err := i.Issue(1)
	require.NoError(t, err)

	i.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = i.Parse(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_OtherProcess(t *testing.T) {
	t.Parallel()
	tok, err := NewIssuer(time.Hour).Issue(1)
	require.NoError(t, err)

	_, err = NewIssuer(time.Hour).Parse(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()
	i := NewIssuer(time.Hour)
	for _, s := range []string{"", "abc", "a.b.c"} {
		_, err := i.Parse(s)
		require.ErrorIs(t, err, common.ErrInvalidToken)
	}
}

func TestParse_WrongAlgorithm(t *testing.T) {
	t.Parallel()
	i := NewIssuer(time.Hour)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Generation: 1,
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = i.Parse(s)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssue_UniqueIDs(t *testing.T) {
	t.Parallel()
	i := NewIssuer(time.Hour)
	a, err := i.Issue(1)
	require.NoError(t, err)
	b, err := i.Issue(1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
