package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/generator"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/models"
	"github.com/dmitrijs2005/gophvault/internal/server/auth"
	"github.com/dmitrijs2005/gophvault/internal/server/backup"
	"github.com/dmitrijs2005/gophvault/internal/vault"
	"github.com/dmitrijs2005/gophvault/internal/wire"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

// Vault is the set of vault operations exposed over gRPC.
type Vault interface {
	Status(ctx context.Context) (vault.Status, error)
	Setup(ctx context.Context, passphrase []byte) (uint64, error)
	Login(ctx context.Context, passphrase []byte) (uint64, error)
	Logout(ctx context.Context)
	ListEntries(ctx context.Context) ([]models.PlainEntry, error)
	CreateEntry(ctx context.Context, in models.EntryInput) (models.PlainEntry, error)
	UpdateEntry(ctx context.Context, id string, upd models.EntryUpdate) (models.PlainEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	GeneratePassword(ctx context.Context, p generator.Policy) (string, error)
}

// SessionChecker tells whether a token's session generation is still live.
type SessionChecker interface {
	Active(gen uint64) bool
}

type Backuper interface {
	Backup(ctx context.Context) (backup.Result, error)
}

const (
	defaultLoginRate  = rate.Limit(5.0 / 60.0)
	defaultLoginBurst = 5
	limiterTTL        = time.Hour
)

type Option func(*GRPCServer)

// WithBackups enables the Backup method.
func WithBackups(b Backuper) Option {
	return func(s *GRPCServer) { s.backups = b }
}

// WithLoginLimit sets the per-peer rate for setup and login attempts.
func WithLoginLimit(r rate.Limit, burst int) Option {
	return func(s *GRPCServer) { s.limiter = newMultiLimiter(r, burst, limiterTTL) }
}

type GRPCServer struct {
	address  string
	vault    Vault
	sessions SessionChecker
	tokens   *auth.Issuer
	backups  Backuper
	limiter  *multiLimiter
	logger   logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, v Vault, sc SessionChecker, tokens *auth.Issuer, opts ...Option) *GRPCServer {
	s := &GRPCServer{
		address:  address,
		vault:    v,
		sessions: sc,
		tokens:   tokens,
		limiter:  newMultiLimiter(defaultLoginRate, defaultLoginBurst, limiterTTL),
		logger:   l.With("module", "grpc_server"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loopbackInterceptor,
		s.rateLimitInterceptor,
		s.sessionTokenInterceptor,
	))

	srv.RegisterService(&wire.ServiceDesc, s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
