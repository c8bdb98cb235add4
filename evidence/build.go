package evidence

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"namegate.io/namegate/metadata"
)

// DefaultResolverID identifies this implementation in rendered evidence.
const DefaultResolverID = "namegate-reference"

// BuildOptions control the informational keys of a built document.
type BuildOptions struct {
	ResolverID string
	ResolvedAt time.Time // informational only; zero means omit
}

// Build maps a resolution onto an unsigned evidence Document.
//
// Only headline record fields are carried; the full metadata document is
// bound through Content-CID. Values that would break canonical rendering
// (embedded newlines and the like) surface as Render errors, not here.
func Build(res metadata.Resolution, opts BuildOptions) Document {
	resolverID := opts.ResolverID
	if resolverID == "" {
		resolverID = DefaultResolverID
	}

	resolution := map[string]string{
		"Domain":      res.Domain,
		"Resolver-ID": resolverID,
		"Root":        res.Root,
		"Spec":        SpecID,
		"Token-ID":    res.TokenID.Hex(),
		"Verified":    strconv.FormatBool(res.Verified),
		"Version":     FormatVersion,
	}
	if res.Prefix != "" {
		resolution["Prefix"] = res.Prefix
	}
	if res.ContentCID != "" {
		resolution["Content-CID"] = res.ContentCID
	}
	if !opts.ResolvedAt.IsZero() {
		resolution["Resolved-At"] = opts.ResolvedAt.UTC().Format(time.RFC3339)
	}
	if len(res.Exclusions) > 0 {
		reasons := make([]string, 0, len(res.Exclusions))
		for _, ex := range res.Exclusions {
			reasons = append(reasons, ex.Reason)
		}
		sort.Strings(reasons)
		resolution["Exclusions"] = strings.Join(reasons, "; ")
	}

	record := map[string]string{}
	if res.Record.Name != "" {
		record["Name"] = res.Record.Name
	}
	if res.Record.Image != "" {
		record["Image"] = res.Record.Image
	}
	if res.Record.ExternalURL != "" {
		record["External-URL"] = res.Record.ExternalURL
	}

	return Document{Resolution: resolution, Record: record}
}
