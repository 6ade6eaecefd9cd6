// Package server wires the vault daemon: storage, session, vault service,
// backups and the gRPC endpoint, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/auth"
	"github.com/dmitrijs2005/gophvault/internal/server/backup"
	"github.com/dmitrijs2005/gophvault/internal/server/config"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophvault/internal/server/storage"
	"github.com/dmitrijs2005/gophvault/internal/session"
	"github.com/dmitrijs2005/gophvault/internal/vault"
	"golang.org/x/time/rate"

	gs "github.com/dmitrijs2005/gophvault/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	session *session.Session
	vault   *vault.Service
	backups *backup.Service
	server  *gs.GRPCServer
}

// NewApp opens the store, applies migrations and, when configured, restores
// a backup into the empty store. Logs go to logOut.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(c.LogLevel, c.LogFormat, logOut)
	if err != nil {
		return nil, err
	}

	db, rm, err := repomanager.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	store := storage.NewDBStore(db, rm)

	var remote backup.ObjectStore
	if c.S3Bucket != "" {
		s3, err := backup.NewS3Store(ctx, backup.S3Config{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		remote = s3
	}
	backups := backup.NewService(store, c.BackupDir, remote, c.S3Prefix, logger)

	if c.RestoreFrom != "" {
		n, err := backups.RestoreFrom(ctx, c.RestoreFrom)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("restore: %w", err)
		}
		logger.Info(ctx, "backup restored", "location", c.RestoreFrom, "entries", n)
	}

	sess := session.New(session.WithIdleTimeout(c.IdleTimeout))
	svc := vault.NewService(store, sess, logger, vault.WithKDF(c.KDFParams()))

	srv := gs.NewGRPCServer(c.Address, logger, svc, sess, auth.NewIssuer(c.TokenTTL),
		gs.WithBackups(backups),
		gs.WithLoginLimit(rate.Limit(c.LoginRate/60), c.LoginBurst),
	)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		session: sess,
		vault:   svc,
		backups: backups,
		server:  srv,
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled, a signal arrives or the server fails.
// The session is locked and the database closed before it returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.session.Watch(ctx, app.config.WatchInterval)
	}()

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
	}
	cancelFunc()
	wg.Wait()

	app.session.Lock()
	if cerr := app.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
