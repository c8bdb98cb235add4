package evidence

import (
	"crypto/ed25519"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"namegate.io/namegate/keys"
)

func mustKeypair(t *testing.T, seedByte byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return pub, priv
}

type deterministicReader struct{}

func (deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0x42
	}
	return len(p), nil
}

func TestSignVerify_Ed25519(t *testing.T) {
	pub, priv := mustKeypair(t, 0x5A)
	doc := Build(testResolution(t), BuildOptions{})

	signed, err := Sign(doc, SignOptions{Ed25519Key: priv})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	e, err := Parse(signed)
	if err != nil {
		t.Fatalf("Parse signed: %v", err)
	}
	wantIssuer := "ed25519:" + base64.StdEncoding.EncodeToString(pub)
	if got := e.IssuerKey(); got != wantIssuer {
		t.Fatalf("Issuer-Key: got %q want %q", got, wantIssuer)
	}
	if got := e.HashAlg(); got != "sha256" {
		t.Fatalf("Hash-Alg: got %q want sha256", got)
	}
	ok, err := e.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("Verify reported unsigned for a signed document")
	}
}

func TestVerify_UnsignedIsNotAnError(t *testing.T) {
	out, err := Render(Build(testResolution(t), BuildOptions{}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	e, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ok, err := e.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("Verify reported signed for an unsigned document")
	}
}

func TestVerify_TamperedResolutionFails(t *testing.T) {
	_, priv := mustKeypair(t, 0x5A)
	signed, err := Sign(Build(testResolution(t), BuildOptions{}), SignOptions{Ed25519Key: priv})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := strings.Replace(string(signed), "Domain: alpha.example.eth", "Domain: alpha.example.xyz", 1)
	e, err := Parse([]byte(tampered))
	if err != nil {
		t.Fatalf("Parse tampered: %v", err)
	}
	if _, err := e.Verify(); err == nil {
		t.Fatalf("Verify accepted a tampered document")
	} else if got := RuleID(err); got != "NG-CRYPTO-401" {
		t.Fatalf("rule: got %q want NG-CRYPTO-401", got)
	}
}

func TestSignVerify_Dilithium3_SHA3(t *testing.T) {
	pk, sk, err := keys.GenerateDilithium3Keypair(io.Reader(deterministicReader{}))
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}
	signed, err := Sign(Build(testResolution(t), BuildOptions{}), SignOptions{
		Dilithium3Key: sk,
		Dilithium3Pub: pk,
		HashAlg:       "sha3-256",
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	e, err := Parse(signed)
	if err != nil {
		t.Fatalf("Parse signed: %v", err)
	}
	if got := e.SignatureAlg(); got != "dilithium3" {
		t.Fatalf("Signature-Alg: got %q", got)
	}
	ok, err := e.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("Verify reported unsigned")
	}
}

func TestSign_OptionErrors(t *testing.T) {
	_, priv := mustKeypair(t, 0x11)
	pk, sk, err := keys.GenerateDilithium3Keypair(io.Reader(deterministicReader{}))
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}
	doc := Build(testResolution(t), BuildOptions{})

	cases := []struct {
		name string
		doc  Document
		opts SignOptions
		rule string
	}{
		{"no key", doc, SignOptions{}, "NG-CRYPTO-501"},
		{"dilithium3 without pub", doc, SignOptions{Dilithium3Key: sk}, "NG-CRYPTO-501"},
		{"both schemes", doc, SignOptions{Ed25519Key: priv, Dilithium3Key: sk, Dilithium3Pub: pk}, "NG-CRYPTO-503"},
		{"already signed", Document{
			Resolution: doc.Resolution,
			Signature:  map[string]string{"Signature": "x"},
		}, SignOptions{Ed25519Key: priv}, "NG-CRYPTO-502"},
		{"bad hash alg", doc, SignOptions{Ed25519Key: priv, HashAlg: "md5"}, "NG-CRYPTO-302"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Sign(tc.doc, tc.opts)
			if err == nil {
				t.Fatalf("Sign succeeded")
			}
			if got := RuleID(err); got != tc.rule {
				t.Fatalf("rule: got %q want %q (%v)", got, tc.rule, err)
			}
			if !IsKind(err, KindCrypto) {
				t.Fatalf("kind: got %v want %v", err, KindCrypto)
			}
		})
	}
}

func TestVerify_SignatureFieldErrors(t *testing.T) {
	pub, _ := mustKeypair(t, 0x33)
	issuer := "ed25519:" + base64.StdEncoding.EncodeToString(pub)
	okSig := base64.StdEncoding.EncodeToString(make([]byte, ed25519.SignatureSize))

	sig := func(over map[string]string) map[string]string {
		m := map[string]string{
			"Hash-Alg":      "sha256",
			"Issuer-Key":    issuer,
			"Signature-Alg": "ed25519",
			"Signature":     okSig,
		}
		for k, v := range over {
			if v == "" {
				delete(m, k)
			} else {
				m[k] = v
			}
		}
		return m
	}

	cases := []struct {
		name string
		sig  map[string]string
		rule string
	}{
		{"incomplete fields", map[string]string{"Hash-Alg": "sha256"}, "NG-CRYPTO-402"},
		{"unsupported issuer scheme", sig(map[string]string{"Issuer-Key": "rsa:AAAA"}), "NG-CRYPTO-110"},
		{"issuer not key value", sig(map[string]string{"Issuer-Key": "justbase64"}), "NG-CRYPTO-101"},
		{"short issuer key", sig(map[string]string{"Issuer-Key": "ed25519:AAAA"}), "NG-CRYPTO-102"},
		{"alg mismatch", sig(map[string]string{"Signature-Alg": "dilithium3"}), "NG-CRYPTO-303"},
		{"bad signature encoding", sig(map[string]string{"Signature": "!!not-base64!!"}), "NG-CRYPTO-201"},
		{"bad signature length", sig(map[string]string{"Signature": "AAAA"}), "NG-CRYPTO-202"},
		{"unsupported hash", sig(map[string]string{"Hash-Alg": "md5"}), "NG-CRYPTO-302"},
		{"unverifiable signature", sig(nil), "NG-CRYPTO-401"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Build(testResolution(t), BuildOptions{})
			doc.Signature = tc.sig
			out, err := Render(doc)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			e, err := Parse(out)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			ok, err := e.Verify()
			if err == nil || ok {
				t.Fatalf("Verify passed: ok=%v err=%v", ok, err)
			}
			if got := RuleID(err); got != tc.rule {
				t.Fatalf("rule: got %q want %q (%v)", got, tc.rule, err)
			}
		})
	}
}
