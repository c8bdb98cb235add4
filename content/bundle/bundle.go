// Package bundle exports and imports cache snapshots as deterministic TAR
// archives.
//
// A snapshot carries verified payload blocks plus an optional index mapping
// domain names to the content CID their metadata resolved to, so a fresh
// resolver can warm-start from a peer's cache. Every block is re-verified
// on both export and import; a snapshot can move bytes around but never
// launder unverified content into a store.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"namegate.io/namegate/content"
)

// FormatVersion is the current snapshot index schema version.
const FormatVersion = 1

var epoch0 = time.Unix(0, 0).UTC()

// ExportOptions controls snapshot export.
type ExportOptions struct {
	// Domains is optional, non-authoritative metadata mapping domain
	// names to the content CID their metadata resolved to.
	Domains map[string]cid.Cid
	// IncludeIndex controls whether index.json is written.
	IncludeIndex bool
}

// Export writes a snapshot containing the blocks for the given CIDs.
//
// Output bytes are deterministic: entries are ordered lexicographically and
// TAR headers are normalized to the zero time. Exported bytes are validated
// against their CIDs before they enter the archive.
func Export(w io.Writer, src content.Store, ids []cid.Cid, opts ExportOptions) error {
	if src == nil {
		return fmt.Errorf("bundle: nil store")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return content.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	ordered := make([]string, 0, len(uniq))
	for s := range uniq {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	tw := tar.NewWriter(w)

	blocks := make([]indexBlock, 0, len(ordered))
	for _, s := range ordered {
		id := uniq[s]
		b, err := src.Get(id)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := content.VerifyCID(b, id); err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeEntry(tw, "blocks/"+s, b); err != nil {
			_ = tw.Close()
			return err
		}
		blocks = append(blocks, indexBlock{CID: s, Size: len(b)})
	}

	if opts.IncludeIndex {
		idx := indexJSON{
			Version:   FormatVersion,
			CIDCodec:  "raw",
			Multihash: "sha2-256",
			Blocks:    blocks,
		}
		names := make([]string, 0, len(opts.Domains))
		for name := range opts.Domains {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if name == "" {
				_ = tw.Close()
				return fmt.Errorf("bundle: empty domain name")
			}
			id := opts.Domains[name]
			if !id.Defined() {
				_ = tw.Close()
				return content.ErrInvalidCID
			}
			idx.Domains = append(idx.Domains, indexDomain{Name: name, CID: id.String()})
		}

		// Struct and slice fields only, so encoding/json is deterministic.
		b, err := json.Marshal(idx)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeEntry(tw, "index.json", append(b, '\n')); err != nil {
			_ = tw.Close()
			return err
		}
	}

	return tw.Close()
}

// ImportOptions controls snapshot import.
type ImportOptions struct {
	// IgnoreUnknown allows unknown TAR entries to be skipped. Default is
	// fail-closed.
	IgnoreUnknown bool
}

// Import reads a snapshot from r and stores every block into dst.
func Import(r io.Reader, dst content.Store) error {
	return ImportWithOptions(r, dst, ImportOptions{})
}

// ImportWithOptions reads a snapshot from r and stores every block into dst,
// validating each block against both its entry name and its computed CID.
func ImportWithOptions(r io.Reader, dst content.Store, opts ImportOptions) error {
	if dst == nil {
		return fmt.Errorf("bundle: nil store")
	}

	tr := tar.NewReader(r)
	seen := map[string]struct{}{}

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := cleanEntryPath(h.Name)
		if name == "" {
			return fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}

		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		// The index is non-authoritative; blocks speak for themselves.
		if name == "index.json" {
			_, _ = io.Copy(io.Discard, tr)
			continue
		}
		if !strings.HasPrefix(name, "blocks/") {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, derr := cid.Decode(strings.TrimPrefix(name, "blocks/"))
		if derr != nil || !id.Defined() {
			return content.ErrInvalidCID
		}
		payload, rerr := io.ReadAll(tr)
		if rerr != nil {
			return rerr
		}
		if err := content.VerifyCID(payload, id); err != nil {
			return err
		}

		key := id.String()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("bundle: duplicate block entry: %s", key)
		}
		seen[key] = struct{}{}

		putID, perr := dst.Put(payload)
		if perr != nil {
			return perr
		}
		if !putID.Equals(id) {
			return content.ErrCIDMismatch
		}
	}
}

// ReadIndex decodes index.json from a snapshot without importing blocks.
// It returns content.ErrNotFound when the snapshot carries no index.
func ReadIndex(r io.Reader) (Index, error) {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return Index{}, content.ErrNotFound
		}
		if err != nil {
			return Index{}, err
		}
		if cleanEntryPath(h.Name) != "index.json" || h.Typeflag != tar.TypeReg {
			continue
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return Index{}, err
		}
		var idx indexJSON
		if err := json.Unmarshal(b, &idx); err != nil {
			return Index{}, fmt.Errorf("bundle: malformed index: %w", err)
		}
		out := Index{Version: idx.Version}
		for _, blk := range idx.Blocks {
			out.Blocks = append(out.Blocks, blk.CID)
		}
		for _, d := range idx.Domains {
			id, err := cid.Decode(d.CID)
			if err != nil {
				return Index{}, fmt.Errorf("bundle: malformed index cid %q: %w", d.CID, err)
			}
			if out.Domains == nil {
				out.Domains = make(map[string]cid.Cid)
			}
			out.Domains[d.Name] = id
		}
		return out, nil
	}
}

// Index is the decoded, non-authoritative snapshot index.
type Index struct {
	Version int
	Blocks  []string
	Domains map[string]cid.Cid
}

type indexJSON struct {
	Version   int           `json:"version"`
	CIDCodec  string        `json:"cidCodec"`
	Multihash string        `json:"multihash"`
	Blocks    []indexBlock  `json:"blocks"`
	Domains   []indexDomain `json:"domains,omitempty"`
}

type indexBlock struct {
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

type indexDomain struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

func writeEntry(tw *tar.Writer, name string, payload []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(payload)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(payload))
	return err
}

func cleanEntryPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
		out = append(out, part)
	}
	return strings.Join(out, "/")
}
