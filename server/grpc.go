package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ResolverServer is the server API for the Resolver gRPC service.
//
// We intentionally use protobuf well-known types (wrappers and Struct) so
// this package does not require a protoc/codegen toolchain.
//
// Proto definition: namegate.proto.
type ResolverServer interface {
	Resolve(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Normalize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TokenID(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Split(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// UnimplementedResolverServer can be embedded to have forward compatible implementations.
type UnimplementedResolverServer struct{}

func (UnimplementedResolverServer) Resolve(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Resolve not implemented")
}
func (UnimplementedResolverServer) Normalize(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Normalize not implemented")
}
func (UnimplementedResolverServer) TokenID(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method TokenID not implemented")
}
func (UnimplementedResolverServer) Split(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Split not implemented")
}

// RegisterResolverServer registers the Resolver service on a gRPC server.
func RegisterResolverServer(s grpc.ServiceRegistrar, srv ResolverServer) {
	s.RegisterService(&Resolver_ServiceDesc, srv)
}

// ResolverClient is the client API for the Resolver gRPC service.
type ResolverClient interface {
	Resolve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Normalize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	TokenID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Split(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type resolverClient struct{ cc grpc.ClientConnInterface }

func NewResolverClient(cc grpc.ClientConnInterface) ResolverClient { return &resolverClient{cc: cc} }

func (c *resolverClient) Resolve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/namegate.v1.Resolver/Resolve", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverClient) Normalize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/namegate.v1.Resolver/Normalize", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverClient) TokenID(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, "/namegate.v1.Resolver/TokenID", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *resolverClient) Split(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/namegate.v1.Resolver/Split", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Resolver_Resolve_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServer).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/namegate.v1.Resolver/Resolve"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServer).Resolve(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Resolver_Normalize_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServer).Normalize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/namegate.v1.Resolver/Normalize"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServer).Normalize(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Resolver_TokenID_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServer).TokenID(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/namegate.v1.Resolver/TokenID"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServer).TokenID(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Resolver_Split_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResolverServer).Split(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/namegate.v1.Resolver/Split"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ResolverServer).Split(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Resolver_ServiceDesc is the grpc.ServiceDesc for the Resolver service.
var Resolver_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "namegate.v1.Resolver",
	HandlerType: (*ResolverServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Resolve", Handler: _Resolver_Resolve_Handler},
		{MethodName: "Normalize", Handler: _Resolver_Normalize_Handler},
		{MethodName: "TokenID", Handler: _Resolver_TokenID_Handler},
		{MethodName: "Split", Handler: _Resolver_Split_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "namegate.proto",
}
