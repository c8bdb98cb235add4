package metadata

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInvalidDomain ErrorCode = "INVALID_DOMAIN"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrInvalidHex    ErrorCode = "INVALID_HEX"
	ErrFetchFailed   ErrorCode = "FETCH_FAILED"
	ErrCIDMismatch   ErrorCode = "CID_MISMATCH"
	ErrInternal      ErrorCode = "INTERNAL"
)

// CodedError is a stable boundary error with a machine-readable code and a
// human message. Transports map Code to their own status space.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// CodeOf extracts the stable code from err, or ErrInternal when err carries
// none.
func CodeOf(err error) ErrorCode {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrInternal
}
