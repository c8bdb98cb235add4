package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"namegate.io/namegate/content"
	"namegate.io/namegate/naming"
	"namegate.io/namegate/registry"
	"namegate.io/namegate/token"
)

// Mode selects how resolution treats content it cannot vouch for.
type Mode string

const (
	// ModePermissive serves what it can and surfaces problems as
	// exclusions on the resolution.
	ModePermissive Mode = "permissive"
	// ModeStrict fails the resolution instead.
	ModeStrict Mode = "strict"
)

// ParseMode parses a mode string; empty selects ModePermissive.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModePermissive):
		return ModePermissive, nil
	case string(ModeStrict):
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("metadata: invalid mode %q", s)
	}
}

// Options tune a single Resolve call.
type Options struct {
	// Gateway is the HTTP gateway base for ipfs content. Empty selects
	// the default gateway. Read per call so config reloads apply without
	// rebuilding the resolver.
	Gateway string
	// Mode defaults to ModePermissive.
	Mode Mode
}

// Exclusion records something the resolver dropped or could not vouch for
// while still serving a permissive-mode resolution.
type Exclusion struct {
	Reason string `json:"reason"`
}

// Resolution is the complete outcome for one domain.
type Resolution struct {
	Domain  string   `json:"domain"`
	Prefix  string   `json:"prefix"`
	Root    string   `json:"root"`
	TokenID token.ID `json:"tokenId"`

	// Registry is the raw record the source returned.
	Registry registry.Record `json:"registry"`
	// Record is the fetched metadata document, normalized for serving.
	Record Record `json:"record"`

	// ContentCID is the digest of the fetched document bytes.
	ContentCID string `json:"contentCid,omitempty"`
	// Verified reports that the bytes hashed back to the record's ipfs
	// reference.
	Verified  bool `json:"verified"`
	FromCache bool `json:"fromCache,omitempty"`

	Exclusions []Exclusion `json:"exclusions,omitempty"`
}

// Resolver orchestrates one domain resolution end to end.
type Resolver struct {
	Source  registry.Source
	Fetcher *content.Fetcher
}

// Resolve runs the full pipeline for domain. Failures cross the boundary as
// *CodedError; anything else would be a bug.
func (r *Resolver) Resolve(ctx context.Context, domain string, opts Options) (*Resolution, error) {
	if err := checkDomain(domain); err != nil {
		return nil, err
	}
	if r.Source == nil || r.Fetcher == nil {
		return nil, NewError(ErrInternal, "resolver is missing a source or fetcher")
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModePermissive
	}

	prefix, root := naming.SplitDomain(domain)
	res := &Resolution{Domain: domain, Prefix: prefix, Root: root}

	rec, err := r.Source.Lookup(ctx, root)
	if err != nil {
		if errors.Is(err, registry.ErrNoRecord) {
			return nil, NewError(ErrNotFound, fmt.Sprintf("no registry record for %q", root))
		}
		return nil, NewError(ErrInternal, "registry lookup failed: "+err.Error())
	}
	res.Registry = rec

	id, err := tokenID(domain, rec)
	if err != nil {
		return nil, err
	}
	res.TokenID = id

	fetched, err := r.Fetcher.Fetch(ctx, rec.URI, opts.Gateway)
	if err != nil {
		return nil, mapFetchErr(rec.URI, err)
	}
	res.ContentCID = content.DigestString(fetched.Data)
	res.Verified = fetched.Verified
	res.FromCache = fetched.FromCache

	if !fetched.Verified && fetched.CID.Defined() {
		// An ipfs reference we could not check end to end.
		if mode == ModeStrict {
			return nil, NewError(ErrCIDMismatch,
				fmt.Sprintf("content for %q is not verifiable against its reference", rec.URI))
		}
		res.Exclusions = append(res.Exclusions,
			Exclusion{Reason: "content not verifiable against its ipfs reference"})
	}

	doc, err := DecodeRecord(fetched.Data)
	if err != nil {
		if mode == ModeStrict {
			return nil, NewError(ErrFetchFailed, "metadata document is not valid JSON")
		}
		res.Exclusions = append(res.Exclusions,
			Exclusion{Reason: "metadata document is not valid JSON; fields omitted"})
		return res, nil
	}
	res.Record = doc.Normalized(opts.Gateway)
	return res, nil
}

// TokenID resolves just the identifier for domain: the registry's stored
// halves when a record exists, the name-derived hash otherwise.
func (r *Resolver) TokenID(ctx context.Context, domain string) (token.ID, error) {
	if err := checkDomain(domain); err != nil {
		return token.ID{}, err
	}
	if r.Source != nil {
		_, root := naming.SplitDomain(domain)
		rec, err := r.Source.Lookup(ctx, root)
		switch {
		case err == nil:
			return tokenID(domain, rec)
		case errors.Is(err, registry.ErrNoRecord):
			// Fall through to the name-derived ID.
		default:
			return token.ID{}, NewError(ErrInternal, "registry lookup failed: "+err.Error())
		}
	}
	return token.Namehash(domain), nil
}

func tokenID(domain string, rec registry.Record) (token.ID, error) {
	if !rec.HasTokenHalves() {
		return token.Namehash(domain), nil
	}
	id, err := token.Compose(rec.TokenLow, rec.TokenHigh)
	if err != nil {
		return token.ID{}, NewError(ErrInvalidHex, err.Error())
	}
	return id, nil
}

func checkDomain(domain string) error {
	if domain == "" {
		return NewError(ErrInvalidDomain, "empty domain")
	}
	if strings.IndexByte(domain, 0) >= 0 {
		return NewError(ErrInvalidDomain, "domain contains NUL")
	}
	return nil
}

func mapFetchErr(uri string, err error) error {
	switch {
	case content.IsNotFound(err):
		return NewError(ErrNotFound, fmt.Sprintf("content for %q not found", uri))
	case errors.Is(err, content.ErrCIDMismatch):
		return NewError(ErrCIDMismatch, fmt.Sprintf("content for %q does not match its reference", uri))
	default:
		return NewError(ErrFetchFailed, err.Error())
	}
}
