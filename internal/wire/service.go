package wire

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "gophvault.v1.Vault"

const (
	MethodStatus           = "Status"
	MethodSetup            = "Setup"
	MethodLogin            = "Login"
	MethodLogout           = "Logout"
	MethodListEntries      = "ListEntries"
	MethodCreateEntry      = "CreateEntry"
	MethodUpdateEntry      = "UpdateEntry"
	MethodDeleteEntry      = "DeleteEntry"
	MethodGeneratePassword = "GeneratePassword"
	MethodBackup           = "Backup"
)

// FullMethod returns the gRPC method path, e.g. "/gophvault.v1.Vault/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// VaultServer is implemented by the daemon.
type VaultServer interface {
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
	Setup(context.Context, *SetupRequest) (*SessionResponse, error)
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
	CreateEntry(context.Context, *CreateEntryRequest) (*EntryResponse, error)
	UpdateEntry(context.Context, *UpdateEntryRequest) (*EntryResponse, error)
	DeleteEntry(context.Context, *DeleteEntryRequest) (*DeleteEntryResponse, error)
	GeneratePassword(context.Context, *GeneratePasswordRequest) (*GeneratePasswordResponse, error)
	Backup(context.Context, *BackupRequest) (*BackupResponse, error)
}

// ServiceDesc is passed to grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodStatus, VaultServer.Status),
		unary(MethodSetup, VaultServer.Setup),
		unary(MethodLogin, VaultServer.Login),
		unary(MethodLogout, VaultServer.Logout),
		unary(MethodListEntries, VaultServer.ListEntries),
		unary(MethodCreateEntry, VaultServer.CreateEntry),
		unary(MethodUpdateEntry, VaultServer.UpdateEntry),
		unary(MethodDeleteEntry, VaultServer.DeleteEntry),
		unary(MethodGeneratePassword, VaultServer.GeneratePassword),
		unary(MethodBackup, VaultServer.Backup),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophvault/v1/vault",
}

func unary[Req, Resp any](name string, call func(VaultServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// VaultClient is the client stub for ServiceDesc.
type VaultClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultClient(cc grpc.ClientConnInterface) *VaultClient {
	return &VaultClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *VaultClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, MethodStatus, in, opts)
}

func (c *VaultClient) Setup(ctx context.Context, in *SetupRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, MethodSetup, in, opts)
}

func (c *VaultClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *VaultClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, MethodLogout, in, opts)
}

func (c *VaultClient) ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c.cc, MethodListEntries, in, opts)
}

func (c *VaultClient) CreateEntry(ctx context.Context, in *CreateEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, MethodCreateEntry, in, opts)
}

func (c *VaultClient) UpdateEntry(ctx context.Context, in *UpdateEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, MethodUpdateEntry, in, opts)
}

func (c *VaultClient) DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*DeleteEntryResponse, error) {
	return invoke[DeleteEntryResponse](ctx, c.cc, MethodDeleteEntry, in, opts)
}

func (c *VaultClient) GeneratePassword(ctx context.Context, in *GeneratePasswordRequest, opts ...grpc.CallOption) (*GeneratePasswordResponse, error) {
	return invoke[GeneratePasswordResponse](ctx, c.cc, MethodGeneratePassword, in, opts)
}

func (c *VaultClient) Backup(ctx context.Context, in *BackupRequest, opts ...grpc.CallOption) (*BackupResponse, error) {
	return invoke[BackupResponse](ctx, c.cc, MethodBackup, in, opts)
}
