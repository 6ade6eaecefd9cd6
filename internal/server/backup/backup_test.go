package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/models"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

func validSnapshot() *Snapshot {
	return &Snapshot{
		Version:   FormatVersion,
		CreatedAt: t0,
		MasterKey: models.MasterKeyRecord{
			Salt:       bytes.Repeat([]byte{1}, cryptox.SaltSize),
			KDF:        cryptox.KDFPBKDF2SHA256,
			Iterations: 600000,
			Verifier:   bytes.Repeat([]byte{2}, cryptox.VerifierSize),
			CreatedAt:  t0,
		},
		Entries: []models.Entry{{
			ID:                 "e1",
			Category:           models.CategoryFinance,
			Site:               "bank",
			Username:           "alice",
			PasswordNonce:      bytes.Repeat([]byte{3}, cryptox.NonceSize),
			PasswordCiphertext: []byte("ciphertext"),
			CreatedAt:          t0,
			UpdatedAt:          t0,
		}},
	}
}

type fakeSource struct {
	rec      models.MasterKeyRecord
	entries  []models.Entry
	snapErr  error
	restored *Snapshot
	restErr  error
}

func (f *fakeSource) Snapshot(context.Context) (models.MasterKeyRecord, []models.Entry, error) {
	return f.rec, f.entries, f.snapErr
}

func (f *fakeSource) Restore(_ context.Context, rec models.MasterKeyRecord, entries []models.Entry) error {
	if f.restErr != nil {
		return f.restErr
	}
	f.restored = &Snapshot{MasterKey: rec, Entries: entries}
	return nil
}

type fakeObjects struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeObjects) Put(_ context.Context, key string, body io.ReadSeeker) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, validSnapshot()))

	// archive is really zstd
	zr, err := zstd.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	zr.Close()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": 1`)

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, validSnapshot(), got)
}

func TestRead_Garbage(t *testing.T) {
	_, err := Read(strings.NewReader("definitely not zstd"))
	require.Error(t, err)
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"version", func(s *Snapshot) { s.Version = 99 }},
		{"salt", func(s *Snapshot) { s.MasterKey.Salt = []byte("x") }},
		{"verifier", func(s *Snapshot) { s.MasterKey.Verifier = nil }},
		{"kdf", func(s *Snapshot) { s.MasterKey.KDF = "rot13" }},
		{"empty id", func(s *Snapshot) { s.Entries[0].ID = "" }},
		{"duplicate", func(s *Snapshot) { s.Entries = append(s.Entries, s.Entries[0]) }},
		{"category", func(s *Snapshot) { s.Entries[0].Category = "Games" }},
		{"nonce", func(s *Snapshot) { s.Entries[0].PasswordNonce = []byte("short") }},
		{"notes nonce", func(s *Snapshot) { s.Entries[0].NotesCiphertext = []byte("ct") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(s)
			require.ErrorIs(t, s.Validate(), ErrInvalidSnapshot)
		})
	}
	require.NoError(t, validSnapshot().Validate())
}

func TestService_BackupAndRestore(t *testing.T) {
	ctx := context.Background()
	want := validSnapshot()
	src := &fakeSource{rec: want.MasterKey, entries: want.Entries}
	objects := &fakeObjects{objects: map[string][]byte{}}
	dir := t.TempDir()

	svc := NewService(src, dir, objects, "/vault/", logging.Nop())
	svc.now = func() time.Time { return t0 }

	res, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, filepath.Join(dir, "gophvault-20240801T120000.000000000Z.json.zst"), res.Path)
	assert.Equal(t, "vault/gophvault-20240801T120000.000000000Z.json.zst", res.Key)

	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, int64(res.Size), info.Size())

	local, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, local, objects.objects[res.Key])

	dst := &fakeSource{}
	restoreSvc := NewService(dst, dir, objects, "", logging.Nop())

	n, err := restoreSvc.RestoreFrom(ctx, res.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, want.MasterKey, dst.restored.MasterKey)
	assert.Equal(t, want.Entries, dst.restored.Entries)

	dst.restored = nil
	n, err = restoreSvc.RestoreFrom(ctx, S3Scheme+res.Key)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NotNil(t, dst.restored)
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	svc := NewService(&fakeSource{snapErr: boom}, t.TempDir(), nil, "", logging.Nop())
	_, err := svc.Backup(ctx)
	require.ErrorIs(t, err, boom)

	snap := validSnapshot()
	objects := &fakeObjects{objects: map[string][]byte{}, putErr: boom}
	svc = NewService(&fakeSource{rec: snap.MasterKey, entries: snap.Entries}, t.TempDir(), objects, "", logging.Nop())
	res, err := svc.Backup(ctx)
	require.ErrorIs(t, err, boom)
	assert.FileExists(t, res.Path, "local archive survives a failed upload")

	svc = NewService(&fakeSource{}, t.TempDir(), nil, "", logging.Nop())
	_, err = svc.RestoreFrom(ctx, "s3://whatever")
	require.ErrorIs(t, err, ErrNoObjectStore)

	_, err = svc.RestoreFrom(ctx, filepath.Join(t.TempDir(), "missing.zst"))
	require.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	svc = NewService(&fakeSource{restErr: boom}, t.TempDir(), nil, "", logging.Nop())
	_, err = svc.Restore(ctx, &buf)
	require.ErrorIs(t, err, boom)
}

func TestService_NoRemote(t *testing.T) {
	snap := validSnapshot()
	svc := NewService(&fakeSource{rec: snap.MasterKey, entries: snap.Entries}, filepath.Join(t.TempDir(), "nested"), nil, "", logging.Nop())

	res, err := svc.Backup(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Key)
	assert.FileExists(t, res.Path)
}
