package evidence

import (
	"bytes"
	"strings"
	"testing"

	"namegate.io/namegate/metadata"
	"namegate.io/namegate/token"
)

func testResolution(t *testing.T) metadata.Resolution {
	t.Helper()
	id, err := token.ParseID("0x2a")
	if err != nil {
		t.Fatalf("ParseID: %v", err)
	}
	return metadata.Resolution{
		Domain:     "alpha.example.eth",
		Prefix:     "alpha.",
		Root:       "example.eth",
		TokenID:    id,
		ContentCID: "bafy-doc-1",
		Verified:   true,
		Record: metadata.Record{
			Name:  "Alpha",
			Image: "https://ipfs.io/ipfs/bafy-img/alpha.png",
		},
		Exclusions: []metadata.Exclusion{{Reason: "bravo"}, {Reason: "alfa"}},
	}
}

func TestBuildRender_GoldenBytes(t *testing.T) {
	doc := Build(testResolution(t), BuildOptions{})
	out, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := strings.Join([]string{
		Preamble,
		"RESOLUTION",
		"Content-CID: bafy-doc-1",
		"Domain: alpha.example.eth",
		"Exclusions: alfa; bravo",
		"Prefix: alpha.",
		"Resolver-ID: namegate-reference",
		"Root: example.eth",
		"Spec: namegate-evidence-1",
		"Token-ID: 0x" + strings.Repeat("0", 62) + "2a",
		"Verified: true",
		"Version: 1",
		"",
		"RECORD",
		"Image: https://ipfs.io/ipfs/bafy-img/alpha.png",
		"Name: Alpha",
		"",
		"SIGNATURE",
		Postamble,
	}, "\n")
	if string(out) != want {
		t.Fatalf("rendered bytes mismatch:\ngot:\n%s\nwant:\n%s", out, want)
	}

	// Same input renders the same bytes.
	again, err := Render(Build(testResolution(t), BuildOptions{}))
	if err != nil {
		t.Fatalf("Render again: %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Fatalf("render is not deterministic")
	}
}

func TestParse_RoundTrip(t *testing.T) {
	out, err := Render(Build(testResolution(t), BuildOptions{ResolverID: "gate-7"}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	e, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(e.Raw, out) {
		t.Fatalf("Raw differs from input")
	}
	if got := e.Domain(); got != "alpha.example.eth" {
		t.Fatalf("Domain: got %q", got)
	}
	if got := e.ContentCID(); got != "bafy-doc-1" {
		t.Fatalf("Content-CID: got %q", got)
	}
	if got := e.Field("RESOLUTION", "Resolver-ID"); got != "gate-7" {
		t.Fatalf("Resolver-ID: got %q", got)
	}
	if got := e.Field("RECORD", "Name"); got != "Alpha" {
		t.Fatalf("Name: got %q", got)
	}
	if !strings.HasSuffix(e.TokenID(), "2a") || !strings.HasPrefix(e.TokenID(), "0x") {
		t.Fatalf("Token-ID: got %q", e.TokenID())
	}

	// Signed scope runs through the blank line after RECORD.
	if !bytes.HasPrefix(e.Raw, e.Signed) {
		t.Fatalf("Signed is not a prefix of Raw")
	}
	if !bytes.HasSuffix(e.Signed, []byte("Name: Alpha\n\n")) {
		t.Fatalf("Signed scope ends at %q", e.Signed[len(e.Signed)-20:])
	}
}

func TestParse_RejectsNonCanonical(t *testing.T) {
	canonical, err := Render(Build(testResolution(t), BuildOptions{}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	base := string(canonical)

	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"trailing newline", base + "\n"},
		{"missing preamble", strings.TrimPrefix(base, Preamble+"\n")},
		{"missing postamble", strings.TrimSuffix(base, Postamble)},
		{"cr line ending", strings.Replace(base, "RESOLUTION\n", "RESOLUTION\r\n", 1)},
		{"bom", "\xef\xbb\xbf" + base},
		{"trailing space", strings.Replace(base, "Verified: true\n", "Verified: true \n", 1)},
		{"unsorted keys", strings.Replace(base, "Image: https://ipfs.io/ipfs/bafy-img/alpha.png\nName: Alpha", "Name: Alpha\nImage: https://ipfs.io/ipfs/bafy-img/alpha.png", 1)},
		{"duplicate key", strings.Replace(base, "Name: Alpha\n", "Name: Alpha\nName: Alpha\n", 1)},
		{"missing record section", strings.Replace(base, "RECORD\nImage: https://ipfs.io/ipfs/bafy-img/alpha.png\nName: Alpha\n\n", "", 1)},
		{"sections out of order", strings.Replace(strings.Replace(base, "RESOLUTION\n", "RECORD\n", 1), "RECORD\nImage", "RESOLUTION\nImage", 1)},
		{"double blank line", strings.Replace(base, "\n\nRECORD", "\n\n\nRECORD", 1)},
		{"missing blank line", strings.Replace(base, "\n\nRECORD", "\nRECORD", 1)},
		{"content before first section", strings.Replace(base, Preamble+"\n", Preamble+"\nStray: line\n", 1)},
		{"bad key-value line", strings.Replace(base, "Name: Alpha\n", "NameAlpha\n", 1)},
		{"value leading space", strings.Replace(base, "Name: Alpha\n", "Name:  Alpha\n", 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.input)); err == nil {
				t.Fatalf("Parse accepted non-canonical input")
			} else if !IsKind(err, KindParse) {
				t.Fatalf("error kind: got %v want %v", err, KindParse)
			}
		})
	}
}

func TestCID_MatchesParsedDocument(t *testing.T) {
	out, err := Render(Build(testResolution(t), BuildOptions{}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	fromBytes, err := CID(out)
	if err != nil {
		t.Fatalf("CID: %v", err)
	}
	e, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fromBytes != e.CID() {
		t.Fatalf("CID mismatch: %s vs %s", fromBytes, e.CID())
	}
	if !strings.HasPrefix(fromBytes, "bafkrei") {
		t.Fatalf("expected CIDv1 raw sha2-256, got %s", fromBytes)
	}

	if _, err := CID([]byte("not evidence")); err == nil {
		t.Fatalf("CID accepted junk input")
	}
}

func TestRender_RejectsUnsafeValues(t *testing.T) {
	res := testResolution(t)
	res.Record.Name = "line one\nline two"
	if _, err := Render(Build(res, BuildOptions{})); err == nil {
		t.Fatalf("Render accepted value with newline")
	} else if !IsKind(err, KindRender) {
		t.Fatalf("error kind: got %v want %v", err, KindRender)
	}

	res = testResolution(t)
	res.Record.Name = "trailing "
	if _, err := Render(Build(res, BuildOptions{})); err == nil {
		t.Fatalf("Render accepted value with trailing space")
	}
}
