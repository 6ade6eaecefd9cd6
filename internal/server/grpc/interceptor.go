package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/netx"
	"github.com/dmitrijs2005/gophvault/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// Methods that need a live session token.
var gatedMethods = map[string]bool{
	wire.FullMethod(wire.MethodListEntries): true,
	wire.FullMethod(wire.MethodCreateEntry): true,
	wire.FullMethod(wire.MethodUpdateEntry): true,
	wire.FullMethod(wire.MethodDeleteEntry): true,
	wire.FullMethod(wire.MethodBackup):      true,
}

// Methods that accept a passphrase.
var limitedMethods = map[string]bool{
	wire.FullMethod(wire.MethodSetup): true,
	wire.FullMethod(wire.MethodLogin): true,
}

func peerAddr(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	return p.Addr.String()
}

func (s *GRPCServer) loopbackInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !netx.IsLoopbackAddr(peerAddr(ctx)) {
		s.logger.Warn(ctx, "rejected non-loopback peer", "method", info.FullMethod)
		return nil, status.Error(codes.PermissionDenied, "only local clients are allowed")
	}
	return handler(ctx, req)
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if limitedMethods[info.FullMethod] {
		key := "unknown"
		if host, _, err := net.SplitHostPort(peerAddr(ctx)); err == nil {
			key = host
		}
		if !s.limiter.allow(key) {
			s.logger.Warn(ctx, "too many passphrase attempts", "method", info.FullMethod)
			return nil, status.Error(codes.ResourceExhausted, "too many attempts, try again later")
		}
	}
	return handler(ctx, req)
}

func (s *GRPCServer) sessionTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !gatedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.SessionTokenHeaderName); len(values) > 0 {
			token = values[0]
		}
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing session token")
	}

	gen, err := s.tokens.Parse(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}
	if !s.sessions.Active(gen) {
		return nil, status.Error(codes.FailedPrecondition, common.ErrSessionLocked.Error())
	}

	return handler(ctx, req)
}
