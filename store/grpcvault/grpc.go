// Package grpcvault exposes the store interfaces over a gRPC Vault service,
// so signing and verification can run against a remote record vault.
package grpcvault

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// VaultServer is the server API for the Vault gRPC service.
//
// We intentionally use protobuf well-known wrapper types so this package does
// not require a protoc/codegen toolchain. Record-shaped messages travel as
// JSON inside BytesValue.
//
// Proto definition: vault.proto.
type VaultServer interface {
	FindIdentity(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	FindKey(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	PutMedia(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	FindMedia(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	HasMedia(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	AppendEvent(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error)
	SignerSignals(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	TotalEventWeight(context.Context, *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error)
}

// UnimplementedVaultServer can be embedded to have forward compatible implementations.
type UnimplementedVaultServer struct{}

func (UnimplementedVaultServer) FindIdentity(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method FindIdentity not implemented")
}
func (UnimplementedVaultServer) FindKey(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method FindKey not implemented")
}
func (UnimplementedVaultServer) PutMedia(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method PutMedia not implemented")
}
func (UnimplementedVaultServer) FindMedia(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method FindMedia not implemented")
}
func (UnimplementedVaultServer) HasMedia(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method HasMedia not implemented")
}
func (UnimplementedVaultServer) AppendEvent(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method AppendEvent not implemented")
}
func (UnimplementedVaultServer) SignerSignals(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method SignerSignals not implemented")
}
func (UnimplementedVaultServer) TotalEventWeight(context.Context, *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	return nil, status.Error(codes.Unimplemented, "method TotalEventWeight not implemented")
}

// RegisterVaultServer registers the Vault service on a gRPC server.
func RegisterVaultServer(s grpc.ServiceRegistrar, srv VaultServer) {
	s.RegisterService(&Vault_ServiceDesc, srv)
}

// VaultClient is the client API for the Vault gRPC service.
type VaultClient interface {
	FindIdentity(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	FindKey(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	PutMedia(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	FindMedia(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	HasMedia(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	AppendEvent(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	SignerSignals(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	TotalEventWeight(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error)
}

type vaultClient struct{ cc grpc.ClientConnInterface }

func NewVaultClient(cc grpc.ClientConnInterface) VaultClient { return &vaultClient{cc: cc} }

func (c *vaultClient) FindIdentity(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/identik.stamp.store.grpcvault.v1.Vault/FindIdentity", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) FindKey(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/identik.stamp.store.grpcvault.v1.Vault/FindKey", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) PutMedia(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, "/identik.stamp.store.grpcvault.v1.Vault/PutMedia", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) FindMedia(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/identik.stamp.store.grpcvault.v1.Vault/FindMedia", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) HasMedia(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, "/identik.stamp.store.grpcvault.v1.Vault/HasMedia", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) AppendEvent(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, "/identik.stamp.store.grpcvault.v1.Vault/AppendEvent", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) SignerSignals(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/identik.stamp.store.grpcvault.v1.Vault/SignerSignals", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) TotalEventWeight(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, "/identik.stamp.store.grpcvault.v1.Vault/TotalEventWeight", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Vault_FindIdentity_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServer).FindIdentity(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/identik.stamp.store.grpcvault.v1.Vault/FindIdentity"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VaultServer).FindIdentity(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Vault_FindKey_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServer).FindKey(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/identik.stamp.store.grpcvault.v1.Vault/FindKey"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VaultServer).FindKey(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Vault_PutMedia_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServer).PutMedia(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/identik.stamp.store.grpcvault.v1.Vault/PutMedia"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VaultServer).PutMedia(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Vault_FindMedia_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServer).FindMedia(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/identik.stamp.store.grpcvault.v1.Vault/FindMedia"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VaultServer).FindMedia(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Vault_HasMedia_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServer).HasMedia(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/identik.stamp.store.grpcvault.v1.Vault/HasMedia"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VaultServer).HasMedia(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Vault_AppendEvent_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServer).AppendEvent(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/identik.stamp.store.grpcvault.v1.Vault/AppendEvent"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VaultServer).AppendEvent(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Vault_SignerSignals_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServer).SignerSignals(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/identik.stamp.store.grpcvault.v1.Vault/SignerSignals"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VaultServer).SignerSignals(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Vault_TotalEventWeight_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VaultServer).TotalEventWeight(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/identik.stamp.store.grpcvault.v1.Vault/TotalEventWeight"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VaultServer).TotalEventWeight(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Vault_ServiceDesc is the grpc.ServiceDesc for the Vault service.
var Vault_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "identik.stamp.store.grpcvault.v1.Vault",
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FindIdentity", Handler: _Vault_FindIdentity_Handler},
		{MethodName: "FindKey", Handler: _Vault_FindKey_Handler},
		{MethodName: "PutMedia", Handler: _Vault_PutMedia_Handler},
		{MethodName: "FindMedia", Handler: _Vault_FindMedia_Handler},
		{MethodName: "HasMedia", Handler: _Vault_HasMedia_Handler},
		{MethodName: "AppendEvent", Handler: _Vault_AppendEvent_Handler},
		{MethodName: "SignerSignals", Handler: _Vault_SignerSignals_Handler},
		{MethodName: "TotalEventWeight", Handler: _Vault_TotalEventWeight_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vault.proto",
}
