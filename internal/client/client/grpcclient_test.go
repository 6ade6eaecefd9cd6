package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/models"
	"github.com/dmitrijs2005/gophvault/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// fakeVault records the session token of each call and answers from fields.
type fakeVault struct {
	wire.VaultServer

	tokens  []string
	listErr error
}

func (f *fakeVault) seen(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	var tok string
	if v := md.Get(common.SessionTokenHeaderName); len(v) > 0 {
		tok = v[0]
	}
	f.tokens = append(f.tokens, tok)
}

func (f *fakeVault) Login(ctx context.Context, in *wire.LoginRequest) (*wire.SessionResponse, error) {
	f.seen(ctx)
	if in.Passphrase != "Correct-Horse1" {
		return nil, status.Error(codes.Unauthenticated, common.ErrAuthentication.Error())
	}
	return &wire.SessionResponse{SessionToken: "tok-1"}, nil
}

func (f *fakeVault) Logout(ctx context.Context, _ *wire.LogoutRequest) (*wire.LogoutResponse, error) {
	f.seen(ctx)
	return &wire.LogoutResponse{}, nil
}

func (f *fakeVault) ListEntries(ctx context.Context, _ *wire.ListEntriesRequest) (*wire.ListEntriesResponse, error) {
	f.seen(ctx)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &wire.ListEntriesResponse{Entries: []models.PlainEntry{{ID: "1", Site: "github.com"}}}, nil
}

func startFake(t *testing.T, f *fakeVault) *GRPCClient {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	srv.RegisterService(&wire.ServiceDesc, f)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewGRPCClient(lis.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_SessionToken(t *testing.T) {
	f := &fakeVault{}
	c := startFake(t, f)
	ctx := context.Background()

	err := c.Login(ctx, "wrong")
	require.ErrorIs(t, err, common.ErrAuthentication)

	require.NoError(t, c.Login(ctx, "Correct-Horse1"))

	entries, err := c.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "github.com", entries[0].Site)

	require.NoError(t, c.Logout(ctx))
	_, _ = c.ListEntries(ctx)

	assert.Equal(t, []string{"", "", "tok-1", "", ""}, f.tokens)
}

func TestGRPCClient_Errors(t *testing.T) {
	f := &fakeVault{listErr: status.Error(codes.FailedPrecondition, common.ErrSessionLocked.Error())}
	c := startFake(t, f)

	_, err := c.ListEntries(context.Background())
	require.ErrorIs(t, err, common.ErrSessionLocked)
	assert.Equal(t, common.ErrSessionLocked.Error(), err.Error())
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"validation detail", status.Error(codes.InvalidArgument, "validation error: site is required"), common.ErrorValidation},
		{"not found", status.Error(codes.NotFound, "get entry: not found"), common.ErrorNotFound},
		{"already initialized", status.Error(codes.AlreadyExists, common.ErrAlreadyInitialized.Error()), common.ErrAlreadyInitialized},
		{"not initialized", status.Error(codes.FailedPrecondition, common.ErrNotInitialized.Error()), common.ErrNotInitialized},
		{"integrity", status.Error(codes.DataLoss, common.ErrIntegrity.Error()), common.ErrIntegrity},
		{"missing token", status.Error(codes.Unauthenticated, "missing session token"), ErrUnauthorized},
		{"non loopback", status.Error(codes.PermissionDenied, "only local clients are allowed"), ErrUnauthorized},
		{"rate limited", status.Error(codes.ResourceExhausted, "slow down"), ErrTooManyAttempts},
		{"unavailable", status.Error(codes.Unavailable, "connection refused"), ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	assert.NoError(t, mapError(nil))

	plain := errors.New("plain")
	assert.Same(t, plain, mapError(plain))

	other := mapError(status.Error(codes.Internal, "internal error"))
	assert.EqualError(t, other, "rpc error: internal error")
}
