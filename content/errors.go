package content

import "errors"

var (
	ErrNotFound       = errors.New("content: not found")
	ErrInvalidCID     = errors.New("content: invalid cid")
	ErrCIDMismatch    = errors.New("content: cid mismatch")
	ErrImmutable      = errors.New("content: immutable object mismatch")
	ErrTooLarge       = errors.New("content: payload exceeds size limit")
	ErrUnsupportedURL = errors.New("content: unsupported url")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
