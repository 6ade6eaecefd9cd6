package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/backup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrAuthentication, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrSessionLocked, codes.FailedPrecondition},
	{common.ErrNotInitialized, codes.FailedPrecondition},
	{common.ErrAlreadyUnlocked, codes.FailedPrecondition},
	{common.ErrAlreadyInitialized, codes.AlreadyExists},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrorValidation, codes.InvalidArgument},
	{common.ErrPassphraseTooShort, codes.InvalidArgument},
	{common.ErrInvalidPolicy, codes.InvalidArgument},
	{common.ErrIntegrity, codes.DataLoss},
	{backup.ErrNoObjectStore, codes.FailedPrecondition},
	{context.Canceled, codes.Canceled},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
}

// toStatus converts a service error into a gRPC status. Known errors keep
// their message; anything else is logged and reported as internal.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return status.Error(e.code, err.Error())
		}
	}
	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
