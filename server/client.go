package server

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"namegate.io/namegate/metadata"
	"namegate.io/namegate/token"
)

// Client wraps the Resolver gRPC service behind the resolver's native
// types.
type Client struct {
	cc  *grpc.ClientConn
	rpc ResolverClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, rpc: NewResolverClient(cc), Timeout: 0}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Resolve(domain string) (*metadata.Resolution, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.rpc.Resolve(ctx, wrapperspb.String(domain))
	if err != nil {
		return nil, errorFromRPC(err)
	}
	var res metadata.Resolution
	if err := decodeStruct(reply, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) TokenID(domain string) (token.ID, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.rpc.TokenID(ctx, wrapperspb.String(domain))
	if err != nil {
		return token.ID{}, errorFromRPC(err)
	}
	return token.ParseID(reply.GetValue())
}

func (c *Client) Split(domain string) (prefix, root string, err error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.rpc.Split(ctx, wrapperspb.String(domain))
	if err != nil {
		return "", "", errorFromRPC(err)
	}
	m := reply.AsMap()
	prefix, _ = m["prefix"].(string)
	root, _ = m["root"].(string)
	return prefix, root, nil
}

// Normalize sends a raw metadata document and returns the scrubbed record
// the server would serve for it.
func (c *Client) Normalize(doc []byte) (metadata.Record, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(doc, &m); err != nil {
		return metadata.Record{}, metadata.NewError(metadata.ErrInvalidDomain, "document is not a JSON object")
	}
	in, err := structpb.NewStruct(m)
	if err != nil {
		return metadata.Record{}, metadata.NewError(metadata.ErrInvalidDomain, "document is not a metadata record")
	}

	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.rpc.Normalize(ctx, in)
	if err != nil {
		return metadata.Record{}, errorFromRPC(err)
	}
	var rec metadata.Record
	if err := decodeStruct(reply, &rec); err != nil {
		return metadata.Record{}, err
	}
	return rec, nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

func decodeStruct(s *structpb.Struct, v interface{}) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return metadata.NewError(metadata.ErrInternal, "response decoding failed")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return metadata.NewError(metadata.ErrInternal, "response decoding failed")
	}
	return nil
}
