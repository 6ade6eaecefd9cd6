package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTooManyAttempts = errors.New("too many attempts, try again later")
)

// Sentinels the daemon reports by message. More specific texts come first.
var remoteErrors = []error{
	common.ErrAlreadyInitialized,
	common.ErrNotInitialized,
	common.ErrAlreadyUnlocked,
	common.ErrAuthentication,
	common.ErrSessionLocked,
	common.ErrIntegrity,
	common.ErrInvalidPolicy,
	common.ErrPassphraseTooShort,
	common.ErrInvalidToken,
	common.ErrorValidation,
	common.ErrorNotFound,
}

// remoteError keeps the daemon's message and unwraps to the matching
// sentinel.
type remoteError struct {
	msg string
	err error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.err }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.ResourceExhausted:
		return ErrTooManyAttempts
	}

	msg := st.Message()
	for _, known := range remoteErrors {
		if strings.Contains(msg, known.Error()) {
			return &remoteError{msg: msg, err: known}
		}
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return &remoteError{msg: msg, err: ErrUnauthorized}
	default:
		return fmt.Errorf("rpc error: %s", msg)
	}
}
