// Package registry maps a registrable root domain to its on-chain record:
// the stored token ID halves, the metadata URI, and the owner address.
//
// The resolver treats a Source as the authority for WHAT a domain points
// at; everything downstream (fetching, verification, normalization) only
// trusts bytes that check out against that record.
package registry

import (
	"context"
	"errors"
	"fmt"

	"namegate.io/namegate/token"
)

// ErrNoRecord is returned by Lookup when the source has no record for the
// root domain.
var ErrNoRecord = errors.New("registry: no record")

// Record is one root domain's registry entry.
type Record struct {
	// TokenLow and TokenHigh are the 128-bit halves of the token ID as
	// the registry stores them, hex with optional 0x prefix. Both empty
	// means the ID is derived from the name instead.
	TokenLow  string `json:"token_low,omitempty"`
	TokenHigh string `json:"token_high,omitempty"`
	// URI locates the metadata document (ipfs:// or http(s)://).
	URI string `json:"uri"`
	// Owner is the controlling address, informational only.
	Owner string `json:"owner,omitempty"`
}

// HasTokenHalves reports whether the record carries stored ID halves.
func (r Record) HasTokenHalves() bool {
	return r.TokenLow != "" || r.TokenHigh != ""
}

// Validate checks that the record is usable: a URI is required, and stored
// token halves, when present, must compose into an ID.
func (r Record) Validate() error {
	if r.URI == "" {
		return errors.New("registry: record uri is required")
	}
	if r.HasTokenHalves() {
		if r.TokenLow == "" || r.TokenHigh == "" {
			return errors.New("registry: token halves must be set together")
		}
		if _, err := token.Compose(r.TokenLow, r.TokenHigh); err != nil {
			return fmt.Errorf("registry: bad token halves: %w", err)
		}
	}
	return nil
}

// Source looks up the record for a root domain.
//
// Lookup MUST return ErrNoRecord (possibly wrapped) for unknown roots so
// callers can tell absence from failure.
type Source interface {
	Lookup(ctx context.Context, root string) (Record, error)
}

// Static is a fixed in-memory Source for tests and one-shot CLI runs.
type Static map[string]Record

var _ Source = Static{}

func (s Static) Lookup(_ context.Context, root string) (Record, error) {
	rec, ok := s[root]
	if !ok {
		return Record{}, fmt.Errorf("%w for %q", ErrNoRecord, root)
	}
	return rec, nil
}
