package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/auth"
	"github.com/dmitrijs2005/gophvault/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type fakeSessions struct{ gen uint64 }

func (f fakeSessions) Active(gen uint64) bool { return gen == f.gen }

func newTestServer(tokens *auth.Issuer, active uint64) *GRPCServer {
	return NewGRPCServer("", logging.Nop(), nil, fakeSessions{gen: active}, tokens)
}

func peerContext(addr string) context.Context {
	tcp, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		panic(err)
	}
	return peer.NewContext(context.Background(), &peer.Peer{Addr: tcp})
}

func okHandler(called *bool) grpc.UnaryHandler {
	return func(ctx context.Context, req any) (any, error) {
		*called = true
		return "ok", nil
	}
}

func TestLoopbackInterceptor(t *testing.T) {
	s := newTestServer(auth.NewIssuer(time.Hour), 1)
	info := &grpc.UnaryServerInfo{FullMethod: wire.FullMethod(wire.MethodStatus)}

	tests := []struct {
		name string
		ctx  context.Context
		ok   bool
	}{
		{"ipv4 loopback", peerContext("127.0.0.1:5000"), true},
		{"ipv6 loopback", peerContext("[::1]:5000"), true},
		{"remote", peerContext("10.1.2.3:5000"), false},
		{"no peer", context.Background(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, err := s.loopbackInterceptor(tt.ctx, nil, info, okHandler(&called))
			assert.Equal(t, tt.ok, called)
			if tt.ok {
				require.NoError(t, err)
			} else {
				assert.Equal(t, codes.PermissionDenied, status.Code(err))
			}
		})
	}
}

func TestSessionTokenInterceptor(t *testing.T) {
	tokens := auth.NewIssuer(time.Hour)
	s := newTestServer(tokens, 7)

	live, err := tokens.Issue(7)
	require.NoError(t, err)
	stale, err := tokens.Issue(6)
	require.NoError(t, err)

	gated := &grpc.UnaryServerInfo{FullMethod: wire.FullMethod(wire.MethodListEntries)}
	del := &grpc.UnaryServerInfo{FullMethod: wire.FullMethod(wire.MethodDeleteEntry)}
	open := &grpc.UnaryServerInfo{FullMethod: wire.FullMethod(wire.MethodGeneratePassword)}

	withMD := func(token string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.SessionTokenHeaderName, token))
	}

	tests := []struct {
		name string
		ctx  context.Context
		info *grpc.UnaryServerInfo
		code codes.Code
	}{
		{"open method without token", context.Background(), open, codes.OK},
		{"missing token", context.Background(), gated, codes.Unauthenticated},
		{"garbage token", withMD("abc"), gated, codes.Unauthenticated},
		{"stale generation", withMD(stale), gated, codes.FailedPrecondition},
		{"live token", withMD(live), gated, codes.OK},
		{"delete without token", context.Background(), del, codes.Unauthenticated},
		{"delete with stale generation", withMD(stale), del, codes.FailedPrecondition},
		{"delete with live token", withMD(live), del, codes.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, err := s.sessionTokenInterceptor(tt.ctx, nil, tt.info, okHandler(&called))
			assert.Equal(t, tt.code, status.Code(err))
			assert.Equal(t, tt.code == codes.OK, called)
		})
	}
}

func TestRateLimitInterceptor_PerPeer(t *testing.T) {
	s := newTestServer(auth.NewIssuer(time.Hour), 1)
	s.limiter = newMultiLimiter(rate.Every(time.Hour), 1, time.Hour)
	login := &grpc.UnaryServerInfo{FullMethod: wire.FullMethod(wire.MethodLogin)}

	called := false
	_, err := s.rateLimitInterceptor(peerContext("127.0.0.1:1"), nil, login, okHandler(&called))
	require.NoError(t, err)

	_, err = s.rateLimitInterceptor(peerContext("127.0.0.1:2"), nil, login, okHandler(&called))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	called = false
	_, err = s.rateLimitInterceptor(peerContext("[::1]:1"), nil, login, okHandler(&called))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestMultiLimiter_Allow(t *testing.T) {
	ml := newMultiLimiter(rate.Limit(2), 2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ml.now = func() time.Time { return now }

	key := "test"
	assert.True(t, ml.allow(key), "first allow should pass")
	assert.True(t, ml.allow(key), "second allow should pass")
	assert.False(t, ml.allow(key), "third allow should be rate limited")

	now = now.Add(time.Second)
	assert.True(t, ml.allow(key), "tokens refill over time")
}

func TestMultiLimiter_ForgetsIdleKeys(t *testing.T) {
	ml := newMultiLimiter(rate.Every(time.Hour), 1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ml.now = func() time.Time { return now }

	ml.allow("a")
	now = now.Add(2 * time.Minute)
	ml.allow("b")

	assert.NotContains(t, ml.entries, "a")
	assert.Contains(t, ml.entries, "b")
}

func TestToStatus(t *testing.T) {
	s := newTestServer(auth.NewIssuer(time.Hour), 1)
	ctx := context.Background()

	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrAuthentication, codes.Unauthenticated},
		{common.ErrSessionLocked, codes.FailedPrecondition},
		{common.ErrAlreadyInitialized, codes.AlreadyExists},
		{fmt.Errorf("get entry: %w", common.ErrorNotFound), codes.NotFound},
		{fmt.Errorf("%w: site is required", common.ErrorValidation), codes.InvalidArgument},
		{common.ErrIntegrity, codes.DataLoss},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("disk on fire"), codes.Internal},
	}
	for _, tt := range tests {
		err := s.toStatus(ctx, "m", tt.err)
		assert.Equal(t, tt.code, status.Code(err), tt.err.Error())
	}

	st, _ := status.FromError(s.toStatus(ctx, "m", errors.New("dsn=postgres://secret")))
	assert.Equal(t, "internal error", st.Message())
}
