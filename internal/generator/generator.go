// Package generator produces random passwords from crypto/rand according to
// a character-class policy.
package generator

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{}|;:,.<>?"

	DefaultLength = 20
	MaxLength     = 256
)

type Policy struct {
	Length     int  `json:"length"`
	UseUpper   bool `json:"use_upper"`
	UseLower   bool `json:"use_lower"`
	UseDigits  bool `json:"use_digits"`
	UseSymbols bool `json:"use_symbols"`
}

// DefaultPolicy is 20 characters drawn from all four classes.
func DefaultPolicy() Policy {
	return Policy{
		Length:     DefaultLength,
		UseUpper:   true,
		UseLower:   true,
		UseDigits:  true,
		UseSymbols: true,
	}
}

func (p Policy) classes() []string {
	var out []string
	if p.UseUpper {
		out = append(out, upperChars)
	}
	if p.UseLower {
		out = append(out, lowerChars)
	}
	if p.UseDigits {
		out = append(out, digitChars)
	}
	if p.UseSymbols {
		out = append(out, symbolChars)
	}
	return out
}

// Validate reports common.ErrInvalidPolicy when no class is enabled or the
// length cannot hold one character of every enabled class.
func (p Policy) Validate() error {
	n := len(p.classes())
	switch {
	case n == 0:
		return fmt.Errorf("%w: no character class enabled", common.ErrInvalidPolicy)
	case p.Length < n:
		return fmt.Errorf("%w: length %d is below the %d enabled classes", common.ErrInvalidPolicy, p.Length, n)
	case p.Length > MaxLength:
		return fmt.Errorf("%w: length %d exceeds %d", common.ErrInvalidPolicy, p.Length, MaxLength)
	}
	return nil
}

// Generate returns a password of p.Length characters with at least one
// character from every enabled class. One character per class is placed
// first, the rest are drawn from the union, then the result is shuffled.
func Generate(p Policy) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	classes := p.classes()
	var all string
	for _, c := range classes {
		all += c
	}

	out := make([]byte, 0, p.Length)
	for _, c := range classes {
		ch, err := pick(c)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}
	for len(out) < p.Length {
		ch, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random source: %w", err)
	}
	return int(v.Int64()), nil
}

func pick(set string) (byte, error) {
	i, err := randIndex(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

// shuffle is Fisher-Yates over crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
