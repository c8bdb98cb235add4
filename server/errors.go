package server

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"namegate.io/namegate/metadata"
)

// statusFromError maps a resolver failure onto the gRPC status space. The
// status message keeps the CodedError's "CODE: message" form so clients can
// recover the exact code.
func statusFromError(err error) error {
	if err == nil {
		return nil
	}
	switch metadata.CodeOf(err) {
	case metadata.ErrInvalidDomain, metadata.ErrInvalidHex:
		return status.Error(codes.InvalidArgument, err.Error())
	case metadata.ErrNotFound:
		return status.Error(codes.NotFound, err.Error())
	case metadata.ErrCIDMismatch:
		return status.Error(codes.DataLoss, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// errorFromRPC converts a client-side RPC failure back into a
// *metadata.CodedError. The code prefix in the status message wins when it
// names a known code; otherwise the gRPC code decides.
func errorFromRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	msg := st.Message()
	if code, rest, found := strings.Cut(msg, ": "); found {
		switch metadata.ErrorCode(code) {
		case metadata.ErrInvalidDomain, metadata.ErrInvalidHex, metadata.ErrNotFound,
			metadata.ErrFetchFailed, metadata.ErrCIDMismatch, metadata.ErrInternal:
			return metadata.NewError(metadata.ErrorCode(code), rest)
		}
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return metadata.NewError(metadata.ErrInvalidDomain, msg)
	case codes.NotFound:
		return metadata.NewError(metadata.ErrNotFound, msg)
	case codes.DataLoss:
		return metadata.NewError(metadata.ErrCIDMismatch, msg)
	default:
		return metadata.NewError(metadata.ErrInternal, msg)
	}
}
