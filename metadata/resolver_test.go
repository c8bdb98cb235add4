package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"namegate.io/namegate/content"
	"namegate.io/namegate/registry"
	"namegate.io/namegate/token"
)

const metaDoc = `{
	"name": "example\u0000.com",
	"description": "an example domain",
	"image": "ipfs://imagehash",
	"attributes": [{"trait_type": "tier", "value": "gold"}]
}`

// testGateway serves objects under /ipfs/<key> and plain documents under
// /plain/<key>.
func testGateway(t *testing.T, ipfsObjects, plain map[string][]byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ipfs/", func(w http.ResponseWriter, r *http.Request) {
		if b, ok := ipfsObjects[r.URL.Path[len("/ipfs/"):]]; ok {
			_, _ = w.Write(b)
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/plain/", func(w http.ResponseWriter, r *http.Request) {
		if b, ok := plain[r.URL.Path[len("/plain/"):]]; ok {
			_, _ = w.Write(b)
			return
		}
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestResolver(src registry.Source) *Resolver {
	return &Resolver{
		Source:  src,
		Fetcher: content.NewFetcher(content.FetcherOptions{Cache: content.NewMemCache(), RPS: 10000, Burst: 10000}),
	}
}

func mustCID(t *testing.T, data []byte) cid.Cid {
	t.Helper()
	id, err := content.DigestCID(data)
	if err != nil {
		t.Fatalf("DigestCID: %v", err)
	}
	return id
}

func TestResolveHappyPath(t *testing.T) {
	doc := []byte(metaDoc)
	docCID := mustCID(t, doc)
	srv := testGateway(t, map[string][]byte{docCID.String(): doc}, nil)

	src := registry.Static{
		"example.com": {
			TokenLow:  "0x1",
			TokenHigh: "0x0",
			URI:       "ipfs://" + docCID.String(),
			Owner:     "0xowner",
		},
	}
	r := newTestResolver(src)

	res, err := r.Resolve(context.Background(), "sub.example.com", Options{Gateway: srv.URL + "/ipfs/"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Prefix != "sub." || res.Root != "example.com" {
		t.Fatalf("split: got (%q, %q)", res.Prefix, res.Root)
	}
	if got := res.TokenID.Decimal(); got != "1" {
		t.Fatalf("TokenID: got %s want 1", got)
	}
	if !res.Verified {
		t.Fatalf("expected verified resolution")
	}
	if res.ContentCID != docCID.String() {
		t.Fatalf("ContentCID: got %s want %s", res.ContentCID, docCID)
	}
	if res.Record.Name != "example.com" {
		t.Fatalf("Record.Name not cleaned: %q", res.Record.Name)
	}
	if want := srv.URL + "/ipfs/imagehash"; res.Record.Image != want {
		t.Fatalf("Record.Image: got %q want %q", res.Record.Image, want)
	}
	if res.Registry.Owner != "0xowner" {
		t.Fatalf("Registry record not carried: %+v", res.Registry)
	}
	if len(res.Exclusions) != 0 {
		t.Fatalf("unexpected exclusions: %+v", res.Exclusions)
	}
}

func TestResolveErrors(t *testing.T) {
	doc := []byte(metaDoc)
	docCID := mustCID(t, doc)
	tamperedCID := mustCID(t, []byte("the real bytes"))
	srv := testGateway(t, map[string][]byte{
		docCID.String():      doc,
		tamperedCID.String(): []byte("not the real bytes"),
	}, nil)

	src := registry.Static{
		"example.com":  {TokenLow: "0x1", TokenHigh: "0x0", URI: "ipfs://" + docCID.String()},
		"badhex.com":   {TokenLow: "0xzz", TokenHigh: "0x0", URI: "ipfs://" + docCID.String()},
		"tampered.com": {URI: "ipfs://" + tamperedCID.String()},
		"gone.com":     {URI: "ipfs://" + mustCID(t, []byte("missing block")).String()},
	}
	r := newTestResolver(src)
	opts := Options{Gateway: srv.URL + "/ipfs/"}

	cases := []struct {
		name   string
		domain string
		code   ErrorCode
	}{
		{"empty domain", "", ErrInvalidDomain},
		{"nul in domain", "bad\x00.example.com", ErrInvalidDomain},
		{"unknown root", "sub.missing.com", ErrNotFound},
		{"bad stored halves", "sub.badhex.com", ErrInvalidHex},
		{"tampered content", "sub.tampered.com", ErrCIDMismatch},
		{"missing content", "sub.gone.com", ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), tc.domain, opts)
			if err == nil {
				t.Fatalf("Resolve(%q): expected error", tc.domain)
			}
			if got := CodeOf(err); got != tc.code {
				t.Fatalf("CodeOf: got %s want %s (err: %v)", got, tc.code, err)
			}
		})
	}
}

func TestResolveUnverifiableRef(t *testing.T) {
	doc := []byte(metaDoc)
	// A v0 (dag-pb) reference cannot be checked against raw bytes.
	sum, err := multihash.Sum(doc, multihash.SHA2_256, -1)
	if err != nil {
		t.Fatalf("multihash.Sum: %v", err)
	}
	v0 := cid.NewCidV0(sum)
	srv := testGateway(t, map[string][]byte{v0.String(): doc}, nil)

	src := registry.Static{"example.com": {URI: "ipfs://" + v0.String()}}
	r := newTestResolver(src)

	t.Run("permissive serves with exclusion", func(t *testing.T) {
		res, err := r.Resolve(context.Background(), "sub.example.com", Options{Gateway: srv.URL + "/ipfs/"})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if res.Verified {
			t.Fatalf("v0 ref cannot be verified")
		}
		if len(res.Exclusions) != 1 {
			t.Fatalf("exclusions: got %+v want one entry", res.Exclusions)
		}
		if res.Record.Name != "example.com" {
			t.Fatalf("record should still be served: %+v", res.Record)
		}
	})

	t.Run("strict fails", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), "sub.example.com",
			Options{Gateway: srv.URL + "/ipfs/", Mode: ModeStrict})
		if CodeOf(err) != ErrCIDMismatch {
			t.Fatalf("CodeOf: got %s want %s (err: %v)", CodeOf(err), ErrCIDMismatch, err)
		}
	})
}

func TestResolveUndecodableDocument(t *testing.T) {
	raw := []byte("this is not json")
	rawCID := mustCID(t, raw)
	srv := testGateway(t, map[string][]byte{rawCID.String(): raw}, nil)

	src := registry.Static{"example.com": {URI: "ipfs://" + rawCID.String()}}
	r := newTestResolver(src)
	opts := Options{Gateway: srv.URL + "/ipfs/"}

	res, err := r.Resolve(context.Background(), "example.com", opts)
	if err != nil {
		t.Fatalf("permissive Resolve: %v", err)
	}
	if len(res.Exclusions) != 1 {
		t.Fatalf("exclusions: got %+v", res.Exclusions)
	}
	if res.ContentCID != rawCID.String() {
		t.Fatalf("ContentCID: got %s", res.ContentCID)
	}
	if res.Record.Name != "" {
		t.Fatalf("record should be empty: %+v", res.Record)
	}

	opts.Mode = ModeStrict
	if _, err := r.Resolve(context.Background(), "example.com", opts); CodeOf(err) != ErrFetchFailed {
		t.Fatalf("strict: got %v want FETCH_FAILED", err)
	}
}

func TestResolvePlainHTTPURI(t *testing.T) {
	doc := []byte(`{"name":"plain.com"}`)
	srv := testGateway(t, nil, map[string][]byte{"meta.json": doc})

	src := registry.Static{"plain.com": {URI: srv.URL + "/plain/meta.json"}}
	r := newTestResolver(src)

	// Strict mode still passes: only ipfs references promise verifiability.
	res, err := r.Resolve(context.Background(), "plain.com", Options{Mode: ModeStrict})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Verified {
		t.Fatalf("plain http content cannot be verified")
	}
	if res.Record.Name != "plain.com" {
		t.Fatalf("Record.Name: got %q", res.Record.Name)
	}
}

func TestTokenID(t *testing.T) {
	src := registry.Static{
		"example.com": {TokenLow: "0x2a", TokenHigh: "0x0", URI: "ipfs://x"},
	}
	r := newTestResolver(src)

	id, err := r.TokenID(context.Background(), "sub.example.com")
	if err != nil {
		t.Fatalf("TokenID: %v", err)
	}
	if got := id.Decimal(); got != "42" {
		t.Fatalf("TokenID: got %s want 42", got)
	}

	// Roots without a record fall back to the name-derived hash.
	id, err = r.TokenID(context.Background(), "foo.eth")
	if err != nil {
		t.Fatalf("TokenID fallback: %v", err)
	}
	if want := token.Namehash("foo.eth"); id != want {
		t.Fatalf("TokenID fallback: got %s want %s", id, want)
	}
	if _, err := r.TokenID(context.Background(), ""); CodeOf(err) != ErrInvalidDomain {
		t.Fatalf("TokenID empty: got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModePermissive, true},
		{"permissive", ModePermissive, true},
		{"strict", ModeStrict, true},
		{"bogus", "", false},
	} {
		got, err := ParseMode(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseMode(%q): got (%q, %v)", tc.in, got, err)
		}
	}
}

func TestResolveRequiresWiring(t *testing.T) {
	r := &Resolver{}
	if _, err := r.Resolve(context.Background(), "a.b.c", Options{}); CodeOf(err) != ErrInternal {
		t.Fatalf("unwired resolver: got %v want INTERNAL", err)
	}
}
