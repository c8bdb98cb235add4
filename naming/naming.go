// Package naming provides pure, deterministic helpers for working with the
// raw domain strings that arrive at the resolver boundary.
//
// The helpers are intentionally dumb: SplitDomain is positional (dot counting,
// never suffix-list aware) and CleanString removes exactly one code point.
// Anything smarter belongs to callers.
package naming

import "strings"

// SplitDomain splits a domain name into a subdomain prefix and a registrable
// root, where the root is the last two dot-separated labels and the prefix is
// everything before them (trailing dot included).
//
// The split is purely positional: the second dot from the end is the cut
// point. Public-suffix rules are deliberately not consulted, so
// "service.example.co.uk" splits as ("service.example.", "co.uk").
//
// SplitDomain never fails. Inputs with fewer than two dots return ("", domain)
// unchanged, and prefix+root == domain holds for every input. Consecutive or
// trailing dots are ordinary characters: "..." splits as ("..", ".").
func SplitDomain(domain string) (prefix, root string) {
	last := strings.LastIndexByte(domain, '.')
	if last < 0 {
		return "", domain
	}
	cut := strings.LastIndexByte(domain[:last], '.')
	if cut < 0 {
		return "", domain
	}
	return domain[:cut+1], domain[cut+1:]
}

// CleanString returns s with every U+0000 rune removed. All other code
// points, including other control characters, pass through unchanged.
func CleanString(s string) string {
	// NUL is a single byte in UTF-8 and never occurs inside a multi-byte
	// sequence, so a byte-level scan is rune-exact.
	if strings.IndexByte(s, 0) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
