package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/generator"
	"github.com/dmitrijs2005/gophvault/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ wire.VaultServer = (*GRPCServer)(nil)

func (s *GRPCServer) Status(ctx context.Context, req *wire.StatusRequest) (*wire.StatusResponse, error) {
	st, err := s.vault.Status(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, wire.MethodStatus, err)
	}

	resp := &wire.StatusResponse{Initialized: st.Initialized, State: st.State.String()}
	if !st.ExpiresAt.IsZero() {
		exp := st.ExpiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	return resp, nil
}

func (s *GRPCServer) Setup(ctx context.Context, req *wire.SetupRequest) (*wire.SessionResponse, error) {
	passphrase := []byte(req.Passphrase)
	defer common.WipeByteArray(passphrase)

	gen, err := s.vault.Setup(ctx, passphrase)
	if err != nil {
		return nil, s.toStatus(ctx, wire.MethodSetup, err)
	}
	return s.sessionResponse(ctx, gen)
}

func (s *GRPCServer) Login(ctx context.Context, req *wire.LoginRequest) (*wire.SessionResponse, error) {
	passphrase := []byte(req.Passphrase)
	defer common.WipeByteArray(passphrase)

	gen, err := s.vault.Login(ctx, passphrase)
	if err != nil {
		return nil, s.toStatus(ctx, wire.MethodLogin, err)
	}
	return s.sessionResponse(ctx, gen)
}

func (s *GRPCServer) sessionResponse(ctx context.Context, gen uint64) (*wire.SessionResponse, error) {
	token, err := s.tokens.Issue(gen)
	if err != nil {
		s.logger.Error(ctx, "issue session token", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &wire.SessionResponse{SessionToken: token}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *wire.LogoutRequest) (*wire.LogoutResponse, error) {
	s.vault.Logout(ctx)
	return &wire.LogoutResponse{}, nil
}

func (s *GRPCServer) ListEntries(ctx context.Context, req *wire.ListEntriesRequest) (*wire.ListEntriesResponse, error) {
	entries, err := s.vault.ListEntries(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, wire.MethodListEntries, err)
	}
	return &wire.ListEntriesResponse{Entries: entries}, nil
}

func (s *GRPCServer) CreateEntry(ctx context.Context, req *wire.CreateEntryRequest) (*wire.EntryResponse, error) {
	e, err := s.vault.CreateEntry(ctx, req.Entry)
	if err != nil {
		return nil, s.toStatus(ctx, wire.MethodCreateEntry, err)
	}
	return &wire.EntryResponse{Entry: e}, nil
}

func (s *GRPCServer) UpdateEntry(ctx context.Context, req *wire.UpdateEntryRequest) (*wire.EntryResponse, error) {
	e, err := s.vault.UpdateEntry(ctx, req.ID, req.Update)
	if err != nil {
		return nil, s.toStatus(ctx, wire.MethodUpdateEntry, err)
	}
	return &wire.EntryResponse{Entry: e}, nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *wire.DeleteEntryRequest) (*wire.DeleteEntryResponse, error) {
	if err := s.vault.DeleteEntry(ctx, req.ID); err != nil {
		return nil, s.toStatus(ctx, wire.MethodDeleteEntry, err)
	}
	return &wire.DeleteEntryResponse{}, nil
}

func (s *GRPCServer) GeneratePassword(ctx context.Context, req *wire.GeneratePasswordRequest) (*wire.GeneratePasswordResponse, error) {
	p := generator.DefaultPolicy()
	if req.Policy != nil {
		p = *req.Policy
	}

	pw, err := s.vault.GeneratePassword(ctx, p)
	if err != nil {
		return nil, s.toStatus(ctx, wire.MethodGeneratePassword, err)
	}
	return &wire.GeneratePasswordResponse{Password: pw}, nil
}

func (s *GRPCServer) Backup(ctx context.Context, req *wire.BackupRequest) (*wire.BackupResponse, error) {
	if s.backups == nil {
		return nil, status.Error(codes.Unimplemented, "backups are not configured")
	}

	res, err := s.backups.Backup(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, wire.MethodBackup, err)
	}
	return &wire.BackupResponse{Path: res.Path, Key: res.Key, Entries: res.Entries, Size: res.Size}, nil
}
