package gateway

import (
	"strings"

	"github.com/ipfs/go-cid"
)

// Ref is a validated ipfs:// content reference: a decodable CID head plus an
// optional subpath.
type Ref struct {
	CID  cid.Cid
	Path string // subpath after the CID, without the leading slash; may be empty
}

// ParseRef parses an ipfs:// URL into a Ref. The segment between the scheme
// and the first slash must decode as a CID; everything after that slash is
// kept as Path. It reports false for other schemes and for undecodable
// heads, so callers fall back to treating the URL as opaque.
//
// ParseRef is a verification-side view only. ResolveImageURL never consults
// it; rewriting stays a literal prefix operation even for URLs ParseRef
// would reject.
func ParseRef(url string) (Ref, bool) {
	rest, ok := strings.CutPrefix(url, IPFSScheme)
	if !ok || rest == "" {
		return Ref{}, false
	}
	head, path, _ := strings.Cut(rest, "/")
	c, err := cid.Decode(head)
	if err != nil {
		return Ref{}, false
	}
	return Ref{CID: c, Path: path}, true
}

// String renders the reference back in ipfs:// form with the CID in its
// canonical encoding.
func (r Ref) String() string {
	if r.Path == "" {
		return IPFSScheme + r.CID.String()
	}
	return IPFSScheme + r.CID.String() + "/" + r.Path
}
