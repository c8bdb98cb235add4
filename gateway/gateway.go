// Package gateway maps ipfs:// content URLs onto HTTP gateway URLs.
//
// Rewriting is a literal prefix operation: the scheme marker is replaced by
// the configured gateway base and nothing else changes. No separator is
// inserted, no escaping is applied, and URLs in any other scheme pass
// through verbatim. ParseRef adds the stricter view needed for content
// verification, where the reference head must be a decodable CID.
package gateway

import "strings"

// DefaultIPFSGateway is the gateway base applied when none is configured.
const DefaultIPFSGateway = "https://ipfs.io/ipfs/"

// IPFSScheme is the literal URL prefix recognized by ResolveImageURL and
// ParseRef. Matching is case-sensitive.
const IPFSScheme = "ipfs://"

// ResolveImageURL rewrites url onto gatewayBase if it carries the ipfs://
// scheme, and returns it unchanged otherwise (empty and unrecognized inputs
// included).
//
// The base is used exactly as given: "https://gw/" yields "https://gw/<rest>"
// and "https://gw" yields "https://gw<rest>". Callers own the trailing slash.
func ResolveImageURL(gatewayBase, url string) string {
	if !strings.HasPrefix(url, IPFSScheme) {
		return url
	}
	return gatewayBase + url[len(IPFSScheme):]
}

// Rewriter binds ResolveImageURL to a configured gateway base so call sites
// carry one value instead of threading the base everywhere.
type Rewriter struct {
	// Base is the HTTP gateway base, used exactly as given.
	// Empty selects DefaultIPFSGateway.
	Base string
}

// Resolve rewrites url through the configured base.
func (r Rewriter) Resolve(url string) string {
	base := r.Base
	if base == "" {
		base = DefaultIPFSGateway
	}
	return ResolveImageURL(base, url)
}
