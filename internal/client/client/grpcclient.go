package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/generator"
	"github.com/dmitrijs2005/gophvault/internal/models"
	"github.com/dmitrijs2005/gophvault/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Client is what the REPL needs from the daemon.
type Client interface {
	Close() error
	Status(ctx context.Context) (*wire.StatusResponse, error)
	Setup(ctx context.Context, passphrase string) error
	Login(ctx context.Context, passphrase string) error
	Logout(ctx context.Context) error
	ListEntries(ctx context.Context) ([]models.PlainEntry, error)
	CreateEntry(ctx context.Context, in models.EntryInput) (models.PlainEntry, error)
	UpdateEntry(ctx context.Context, id string, upd models.EntryUpdate) (models.PlainEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	GeneratePassword(ctx context.Context, p *generator.Policy) (string, error)
	Backup(ctx context.Context) (*wire.BackupResponse, error)
}

type GRPCClient struct {
	conn   *grpc.ClientConn
	client *wire.VaultClient

	mu    sync.RWMutex
	token string
}

var _ Client = (*GRPCClient)(nil)

func NewGRPCClient(addr string) (*GRPCClient, error) {
	c := &GRPCClient{}
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.sessionTokenInterceptor))
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = wire.NewVaultClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) sessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *GRPCClient) setSessionToken(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

func (c *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := c.sessionToken(); token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.SessionTokenHeaderName, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (c *GRPCClient) Status(ctx context.Context) (*wire.StatusResponse, error) {
	resp, err := c.client.Status(ctx, &wire.StatusRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *GRPCClient) Setup(ctx context.Context, passphrase string) error {
	resp, err := c.client.Setup(ctx, &wire.SetupRequest{Passphrase: passphrase})
	if err != nil {
		return mapError(err)
	}
	c.setSessionToken(resp.SessionToken)
	return nil
}

func (c *GRPCClient) Login(ctx context.Context, passphrase string) error {
	resp, err := c.client.Login(ctx, &wire.LoginRequest{Passphrase: passphrase})
	if err != nil {
		return mapError(err)
	}
	c.setSessionToken(resp.SessionToken)
	return nil
}

func (c *GRPCClient) Logout(ctx context.Context) error {
	c.setSessionToken("")
	if _, err := c.client.Logout(ctx, &wire.LogoutRequest{}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) ListEntries(ctx context.Context) ([]models.PlainEntry, error) {
	resp, err := c.client.ListEntries(ctx, &wire.ListEntriesRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Entries, nil
}

func (c *GRPCClient) CreateEntry(ctx context.Context, in models.EntryInput) (models.PlainEntry, error) {
	resp, err := c.client.CreateEntry(ctx, &wire.CreateEntryRequest{Entry: in})
	if err != nil {
		return models.PlainEntry{}, mapError(err)
	}
	return resp.Entry, nil
}

func (c *GRPCClient) UpdateEntry(ctx context.Context, id string, upd models.EntryUpdate) (models.PlainEntry, error) {
	resp, err := c.client.UpdateEntry(ctx, &wire.UpdateEntryRequest{ID: id, Update: upd})
	if err != nil {
		return models.PlainEntry{}, mapError(err)
	}
	return resp.Entry, nil
}

func (c *GRPCClient) DeleteEntry(ctx context.Context, id string) error {
	if _, err := c.client.DeleteEntry(ctx, &wire.DeleteEntryRequest{ID: id}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) GeneratePassword(ctx context.Context, p *generator.Policy) (string, error) {
	resp, err := c.client.GeneratePassword(ctx, &wire.GeneratePasswordRequest{Policy: p})
	if err != nil {
		return "", mapError(err)
	}
	return resp.Password, nil
}

func (c *GRPCClient) Backup(ctx context.Context) (*wire.BackupResponse, error) {
	resp, err := c.client.Backup(ctx, &wire.BackupRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}
