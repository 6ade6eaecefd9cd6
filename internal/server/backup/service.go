package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/filex"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/models"
)

const (
	filePrefix = "gophvault-"
	fileSuffix = ".json.zst"

	// S3Scheme marks a restore location as an object key.
	S3Scheme = "s3://"
)

var ErrNoObjectStore = errors.New("no object store configured")

// Source is the store side of backup and restore.
type Source interface {
	Snapshot(ctx context.Context) (models.MasterKeyRecord, []models.Entry, error)
	Restore(ctx context.Context, rec models.MasterKeyRecord, entries []models.Entry) error
}

type Result struct {
	Path    string // local file
	Key     string // object key, empty without an object store
	Entries int
	Size    int
}

type Service struct {
	src    Source
	dir    string
	remote ObjectStore
	prefix string
	log    logging.Logger
	now    func() time.Time
}

// NewService writes archives into dir and, when remote is not nil, uploads
// them under prefix.
func NewService(src Source, dir string, remote ObjectStore, prefix string, log logging.Logger) *Service {
	return &Service{
		src:    src,
		dir:    dir,
		remote: remote,
		prefix: strings.Trim(prefix, "/"),
		log:    log.With("module", "backup"),
		now:    time.Now,
	}
}

func (s *Service) fileName(t time.Time) string {
	return filePrefix + t.UTC().Format("20060102T150405.000000000Z") + fileSuffix
}

// Backup writes a snapshot archive and uploads it if an object store is set.
func (s *Service) Backup(ctx context.Context) (Result, error) {
	rec, entries, err := s.src.Snapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read snapshot: %w", err)
	}

	now := s.now()
	snap := &Snapshot{Version: FormatVersion, CreatedAt: now.UTC(), MasterKey: rec, Entries: entries}

	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		return Result{}, err
	}

	name := s.fileName(now)
	res := Result{Entries: len(entries), Size: buf.Len()}

	file, err := filex.WritePrivateFile(s.dir, name, buf.Bytes())
	if err != nil {
		return Result{}, fmt.Errorf("write backup: %w", err)
	}
	res.Path = file

	if s.remote != nil {
		key := name
		if s.prefix != "" {
			key = path.Join(s.prefix, name)
		}
		if err := s.remote.Put(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
			return res, err
		}
		res.Key = key
	}

	s.log.Info(ctx, "backup written", "path", res.Path, "object", res.Key, "entries", res.Entries, "bytes", res.Size)
	return res, nil
}

// Restore loads an archive into an empty store.
func (s *Service) Restore(ctx context.Context, r io.Reader) (int, error) {
	snap, err := Read(r)
	if err != nil {
		return 0, err
	}
	if err := s.src.Restore(ctx, snap.MasterKey, snap.Entries); err != nil {
		return 0, fmt.Errorf("restore: %w", err)
	}
	s.log.Info(ctx, "backup restored", "entries", len(snap.Entries), "created_at", snap.CreatedAt)
	return len(snap.Entries), nil
}

// RestoreFrom restores from a local path or, with the s3:// prefix, from an
// object key in the configured store.
func (s *Service) RestoreFrom(ctx context.Context, location string) (int, error) {
	if key, ok := strings.CutPrefix(location, S3Scheme); ok {
		if s.remote == nil {
			return 0, ErrNoObjectStore
		}
		body, err := s.remote.Get(ctx, key)
		if err != nil {
			return 0, err
		}
		defer body.Close()
		return s.Restore(ctx, body)
	}

	f, err := os.Open(location)
	if err != nil {
		return 0, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()
	return s.Restore(ctx, f)
}
