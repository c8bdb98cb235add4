package server

import (
	"context"
	"encoding/json"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"namegate.io/namegate/config"
	"namegate.io/namegate/metadata"
	"namegate.io/namegate/naming"
)

// Service exposes a metadata.Resolver over the Resolver gRPC service.
//
// Gateway and verification mode are read from the config holder per call,
// so a config reload applies to the next RPC without a restart.
type Service struct {
	UnimplementedResolverServer
	Resolver *metadata.Resolver
	Config   *config.Holder
}

func (s *Service) options() metadata.Options {
	if s == nil || s.Config == nil {
		return metadata.Options{}
	}
	c := s.Config.Get()
	return metadata.Options{Gateway: c.Gateway, Mode: c.VerifyMode()}
}

func (s *Service) Resolve(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s == nil || s.Resolver == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing resolver")
	}
	res, err := s.Resolver.Resolve(ctx, in.GetValue(), s.options())
	if err != nil {
		return nil, statusFromError(err)
	}
	return structFromJSON(res)
}

func (s *Service) Normalize(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	_ = ctx
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return nil, status.Error(codes.Internal, "document re-encoding failed")
	}
	rec, err := metadata.DecodeRecord(data)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "document is not a metadata record")
	}
	return structFromJSON(rec.Normalized(s.options().Gateway))
}

func (s *Service) TokenID(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.Resolver == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing resolver")
	}
	id, err := s.Resolver.TokenID(ctx, in.GetValue())
	if err != nil {
		return nil, statusFromError(err)
	}
	return wrapperspb.String(id.Hex()), nil
}

func (s *Service) Split(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	_ = ctx
	prefix, root := naming.SplitDomain(in.GetValue())
	return structpb.NewStruct(map[string]interface{}{
		"prefix": prefix,
		"root":   root,
	})
}

// structFromJSON converts any JSON-marshalable value into a protobuf Struct
// by round-tripping through its JSON form, so wire shapes match the HTTP
// API exactly.
func structFromJSON(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "response encoding failed")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, "response encoding failed")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "response encoding failed")
	}
	return out, nil
}

// RunGRPC serves the Resolver service on addr until ctx is cancelled, then
// stops gracefully.
func RunGRPC(ctx context.Context, addr string, svc ResolverServer, log zerolog.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s := grpc.NewServer()
	RegisterResolverServer(s, svc)

	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	log.Info().Str("addr", lis.Addr().String()).Msg("grpc server listening")
	return s.Serve(lis)
}
