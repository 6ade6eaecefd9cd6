// Package auth issues and checks the session tokens handed out on setup and
// login. Tokens are HS256 JWTs signed with a per-process random secret, so a
// restart invalidates all of them. Each token carries the session generation
// it was issued for; the transport compares it with the live session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer  = "gophvault"
	subject = "vault-session"

	secretSize = 32
)

type Claims struct {
	jwt.RegisteredClaims
	Generation uint64 `json:"gen"`
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer with a fresh random secret. Tokens expire
// after ttl regardless of session activity.
func NewIssuer(ttl time.Duration) *Issuer {
	return &Issuer{
		secret: common.GenerateRandByteArray(secretSize),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i *Issuer) Issue(generation uint64) (string, error) {
	id, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}
	now := i.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Generation: generation,
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse verifies the token and returns its session generation. Every
// failure is reported as common.ErrInvalidToken.
func (i *Issuer) Parse(tokenString string) (uint64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("%w: expired", common.ErrInvalidToken)
		}
		return 0, common.ErrInvalidToken
	}
	if !token.Valid {
		return 0, common.ErrInvalidToken
	}
	return claims.Generation, nil
}
