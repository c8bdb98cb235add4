package gateway

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

func TestResolveImageURL(t *testing.T) {
	cases := []struct {
		name string
		base string
		url  string
		want string
	}{
		{"default gateway", DefaultIPFSGateway, "ipfs://examplehash", "https://ipfs.io/ipfs/examplehash"},
		{"custom gateway", "https://custom-ipfs.gateway/", "ipfs://examplehash", "https://custom-ipfs.gateway/examplehash"},
		{"custom gateway short", "https://custom/", "ipfs://hash", "https://custom/hash"},
		{"http url passes through", DefaultIPFSGateway, "https://example.com/a.png", "https://example.com/a.png"},
		{"bare value passes through", DefaultIPFSGateway, "examplehash", "examplehash"},
		{"empty url passes through", DefaultIPFSGateway, "", ""},
		{"scheme match is case sensitive", DefaultIPFSGateway, "IPFS://hash", "IPFS://hash"},
		{"truncated scheme passes through", DefaultIPFSGateway, "ipfs:/hash", "ipfs:/hash"},
		{"no separator inserted", "https://gw", "ipfs://hash", "https://gwhash"},
		{"empty base keeps the remainder", "", "ipfs://hash", "hash"},
		{"subpath kept verbatim", "https://custom/", "ipfs://hash/a/b.png", "https://custom/hash/a/b.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveImageURL(tc.base, tc.url); got != tc.want {
				t.Fatalf("ResolveImageURL(%q, %q): got %q want %q", tc.base, tc.url, got, tc.want)
			}
		})
	}
}

func TestRewriter(t *testing.T) {
	var zero Rewriter
	if got, want := zero.Resolve("ipfs://hash"), "https://ipfs.io/ipfs/hash"; got != want {
		t.Fatalf("zero Rewriter: got %q want %q", got, want)
	}
	r := Rewriter{Base: "https://custom-ipfs.gateway/"}
	if got, want := r.Resolve("ipfs://examplehash"), "https://custom-ipfs.gateway/examplehash"; got != want {
		t.Fatalf("custom Rewriter: got %q want %q", got, want)
	}
	if got := r.Resolve("https://plain/x.png"); got != "https://plain/x.png" {
		t.Fatalf("Rewriter rewrote a non-ipfs url: %q", got)
	}
}

func testCID(t *testing.T, data []byte, version uint64) cid.Cid {
	t.Helper()
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		t.Fatalf("multihash.Sum: %v", err)
	}
	if version == 0 {
		return cid.NewCidV0(mh)
	}
	return cid.NewCidV1(cid.Raw, mh)
}

func TestParseRef(t *testing.T) {
	v1 := testCID(t, []byte("gateway ref payload"), 1)
	v0 := testCID(t, []byte("gateway ref payload"), 0)

	t.Run("bare cid v1", func(t *testing.T) {
		ref, ok := ParseRef(IPFSScheme + v1.String())
		if !ok {
			t.Fatalf("ParseRef rejected a valid v1 ref")
		}
		if !ref.CID.Equals(v1) || ref.Path != "" {
			t.Fatalf("got (%s, %q) want (%s, \"\")", ref.CID, ref.Path, v1)
		}
	})

	t.Run("bare cid v0", func(t *testing.T) {
		ref, ok := ParseRef(IPFSScheme + v0.String())
		if !ok {
			t.Fatalf("ParseRef rejected a valid v0 ref")
		}
		if !ref.CID.Equals(v0) {
			t.Fatalf("got %s want %s", ref.CID, v0)
		}
	})

	t.Run("subpath", func(t *testing.T) {
		ref, ok := ParseRef(IPFSScheme + v1.String() + "/images/logo.png")
		if !ok {
			t.Fatalf("ParseRef rejected a ref with subpath")
		}
		if ref.Path != "images/logo.png" {
			t.Fatalf("Path: got %q want %q", ref.Path, "images/logo.png")
		}
		if got, want := ref.String(), IPFSScheme+v1.String()+"/images/logo.png"; got != want {
			t.Fatalf("String: got %q want %q", got, want)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		for _, url := range []string{
			"",
			"ipfs://",
			"ipfs://not-a-cid",
			"ipfs://not-a-cid/path",
			"https://example.com/" + v1.String(),
			v1.String(),
		} {
			if _, ok := ParseRef(url); ok {
				t.Fatalf("ParseRef(%q): expected rejection", url)
			}
		}
	})
}
