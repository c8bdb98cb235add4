// Command evidence_vector_gen regenerates the evidence conformance vector
// set. All inputs are fixed constants, so the output bytes are stable across
// runs and safe to commit.
package main

import (
	"bytes"
	"crypto/ed25519"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"namegate.io/namegate/content"
	"namegate.io/namegate/evidence"
	"namegate.io/namegate/metadata"
	"namegate.io/namegate/naming"
	"namegate.io/namegate/registry"
	"namegate.io/namegate/token"
)

func mustKey(seedByte byte) ed25519.PrivateKey {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	return ed25519.NewKeyFromSeed(seed)
}

func main() {
	outDir := flag.String("out",
		filepath.Join("testdata", "conformance", "evidence", "namegate-evidence-1"),
		"output directory")
	flag.Parse()

	imgCID := content.DigestString([]byte("namegate vector image 1\n"))

	metaBytes := []byte(`{"name":"Vector One","image":"ipfs://` + imgCID +
		`","external_url":"https://names.example/vector-one"}` + "\n")
	metaCID := content.DigestString(metaBytes)

	registryBytes := []byte("{\n" +
		"  \"records\": {\n" +
		"    \"vector.example\": {\n" +
		"      \"token_low\": \"0x00000000000000000000000000000001\",\n" +
		"      \"token_high\": \"0x000000000000000000000000000000a1\",\n" +
		"      \"uri\": \"ipfs://" + metaCID + "\",\n" +
		"      \"owner\": \"0x00a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3\"\n" +
		"    }\n" +
		"  }\n" +
		"}\n")

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatalf("mkdir out: %v", err)
	}
	writeFile(*outDir, "metadata_1.json", metaBytes)
	writeFile(*outDir, "registry_1.json", registryBytes)

	// Rebuild the resolution through the registry file so the committed
	// inputs and output stay consistent with each other.
	recs, err := registry.LoadRecords(filepath.Join(*outDir, "registry_1.json"))
	if err != nil {
		fatalf("registry.LoadRecords: %v", err)
	}
	rec := recs["vector.example"]

	const domain = "alpha.vector.example"
	prefix, root := naming.SplitDomain(domain)

	id, err := token.Compose(rec.TokenLow, rec.TokenHigh)
	if err != nil {
		fatalf("token.Compose: %v", err)
	}
	doc, err := metadata.DecodeRecord(metaBytes)
	if err != nil {
		fatalf("metadata.DecodeRecord: %v", err)
	}

	res := metadata.Resolution{
		Domain:     domain,
		Prefix:     prefix,
		Root:       root,
		TokenID:    id,
		Registry:   rec,
		Record:     doc.Normalized(""),
		ContentCID: content.DigestString(metaBytes),
		Verified:   true,
	}

	built := evidence.Build(res, evidence.BuildOptions{
		ResolvedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	evBytes, err := evidence.Render(built)
	if err != nil {
		fatalf("evidence.Render: %v", err)
	}
	evCID, err := evidence.CID(evBytes)
	if err != nil {
		fatalf("evidence.CID: %v", err)
	}

	writeFile(*outDir, "resolution_1.evidence", evBytes)
	writeFile(*outDir, "resolution_1.cid", []byte(evCID+"\n"))
	writeFile(*outDir, "resolution_1.noncanonical_crlf.evidence",
		bytes.ReplaceAll(evBytes, []byte("\n"), []byte("\r\n")))
	writeFile(*outDir, "resolution_1.noncanonical_unsorted.evidence", swapLines(evBytes, 2, 3))

	// The signed variant is printed rather than committed; ed25519 is
	// deterministic, so the output is stable for the fixed seed.
	priv := mustKey(0xA1)
	signedBytes, err := evidence.Sign(built, evidence.SignOptions{Ed25519Key: priv})
	if err != nil {
		fatalf("evidence.Sign: %v", err)
	}
	signedCID, err := evidence.CID(signedBytes)
	if err != nil {
		fatalf("evidence.CID(signed): %v", err)
	}
	fmt.Printf("CID=%s\n", evCID)
	fmt.Printf("Signed-CID=%s\n", signedCID)
	fmt.Printf("---BEGIN SIGNED---\n%s\n---END SIGNED---\n", string(signedBytes))
}

func swapLines(b []byte, i, j int) []byte {
	lines := bytes.Split(b, []byte("\n"))
	lines[i], lines[j] = lines[j], lines[i]
	return bytes.Join(lines, []byte("\n"))
}

func writeFile(dir, name string, data []byte) {
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		fatalf("write %s: %v", name, err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
