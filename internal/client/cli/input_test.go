package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)
}

func TestGetPassword_Terminal(t *testing.T) {
	oldTerm, oldRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTerm, oldRead })
	isTerminal = func(int) bool { return true }

	readPassword = func(int) ([]byte, error) { return []byte("hunter22"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(rdr("ignored\n"), "Master passphrase", &out)
	require.NoError(t, err)
	assert.Equal(t, "hunter22", string(pw))
	assert.NotContains(t, out.String(), "hunter22")

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(rdr(""), "Master passphrase", &out)
	require.Error(t, err)
}

func TestGetPassword_Piped(t *testing.T) {
	withPipedInput(t)

	var out bytes.Buffer
	pw, err := GetPassword(rdr("secret line\r\nnext\n"), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, "secret line", string(pw))

	_, err = GetPassword(rdr(""), "Password", &out)
	require.Error(t, err)
}
