package evidence

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// SignOptions select the signing key for Sign. Exactly one scheme must be
// set; dilithium3 needs both halves of the keypair.
type SignOptions struct {
	Ed25519Key    ed25519.PrivateKey
	Dilithium3Key *mode3.PrivateKey
	Dilithium3Pub *mode3.PublicKey

	// HashAlg is the digest over the signed scope: sha256 (default),
	// sha512, or sha3-256.
	HashAlg string
}

// Sign renders doc with a populated SIGNATURE section.
//
// The signature covers the canonical bytes from the BEGIN line through the
// blank line after RECORD, so the SIGNATURE section itself never feeds its
// own digest. doc must not already carry signature fields.
func Sign(doc Document, opts SignOptions) ([]byte, error) {
	if len(doc.Signature) != 0 {
		return nil, newError(KindCrypto, "NG-CRYPTO-502", "document already carries signature fields")
	}
	hashAlg := opts.HashAlg
	if hashAlg == "" {
		hashAlg = "sha256"
	}

	unsigned, err := Render(doc)
	if err != nil {
		return nil, err
	}
	scope, err := signedScope(unsigned)
	if err != nil {
		return nil, err
	}
	digest, err := digestFor(hashAlg, scope)
	if err != nil {
		return nil, err
	}

	var issuer, sigAlg, sigB64 string
	switch {
	case opts.Ed25519Key != nil && opts.Dilithium3Key != nil:
		return nil, newError(KindCrypto, "NG-CRYPTO-503", "multiple signing keys")
	case opts.Ed25519Key != nil:
		pub, ok := opts.Ed25519Key.Public().(ed25519.PublicKey)
		if !ok || len(pub) != ed25519.PublicKeySize {
			return nil, newError(KindCrypto, "NG-CRYPTO-102", "invalid ed25519 private key")
		}
		sigAlg = "ed25519"
		issuer = "ed25519:" + base64.StdEncoding.EncodeToString(pub)
		sigB64 = base64.StdEncoding.EncodeToString(ed25519.Sign(opts.Ed25519Key, digest))
	case opts.Dilithium3Key != nil:
		if opts.Dilithium3Pub == nil {
			return nil, newError(KindCrypto, "NG-CRYPTO-501", "missing dilithium3 public key")
		}
		sig := make([]byte, mode3.SignatureSize)
		mode3.SignTo(opts.Dilithium3Key, digest, sig)
		sigAlg = "dilithium3"
		issuer = "dilithium3:" + base64.StdEncoding.EncodeToString(opts.Dilithium3Pub.Bytes())
		sigB64 = base64.StdEncoding.EncodeToString(sig)
	default:
		return nil, newError(KindCrypto, "NG-CRYPTO-501", "missing private key")
	}

	doc.Signature = map[string]string{
		"Hash-Alg":      hashAlg,
		"Issuer-Key":    issuer,
		"Signature-Alg": sigAlg,
		"Signature":     sigB64,
	}
	return Render(doc)
}

// Verify checks the SIGNATURE section against the signed scope.
//
// Returns (false, nil) when the document is unsigned, (true, nil) when the
// signature verifies, and (false, err) for malformed or invalid signatures.
// The scope was captured from the canonical bytes at Parse time, so a
// tampered document never reaches here with a stale scope.
func (e *Evidence) Verify() (bool, error) {
	pairs := e.Sections["SIGNATURE"].Pairs
	if len(pairs) == 0 {
		return false, nil
	}

	sigAlg := e.SignatureAlg()
	hashAlg := e.HashAlg()
	issuer := e.IssuerKey()
	sigB64 := e.Signature()
	if sigAlg == "" || hashAlg == "" || issuer == "" || sigB64 == "" {
		return false, newError(KindCrypto, "NG-CRYPTO-402", "incomplete signature fields")
	}

	issuerAlg, pub, err := issuerKeyBytes(issuer)
	if err != nil {
		return false, err
	}
	if issuerAlg != sigAlg {
		return false, newError(KindCrypto, "NG-CRYPTO-303", "Issuer-Key scheme does not match Signature-Alg")
	}

	sig, err := decodeBase64(sigB64)
	if err != nil {
		return false, wrapError(KindCrypto, "NG-CRYPTO-201", "invalid Signature encoding", err)
	}

	digest, err := digestFor(hashAlg, e.Signed)
	if err != nil {
		return false, err
	}

	switch sigAlg {
	case "ed25519":
		if len(sig) != ed25519.SignatureSize {
			return false, newError(KindCrypto, "NG-CRYPTO-202", "invalid Signature length")
		}
		if !ed25519.Verify(ed25519.PublicKey(pub), digest, sig) {
			return false, newError(KindCrypto, "NG-CRYPTO-401", "signature invalid")
		}
		return true, nil
	case "dilithium3":
		if len(sig) != mode3.SignatureSize {
			return false, newError(KindCrypto, "NG-CRYPTO-202", "invalid Signature length")
		}
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return false, wrapError(KindCrypto, "NG-CRYPTO-115", "invalid dilithium3 public key", err)
		}
		if !mode3.Verify(&pk, digest, sig) {
			return false, newError(KindCrypto, "NG-CRYPTO-401", "signature invalid")
		}
		return true, nil
	default:
		return false, newError(KindCrypto, "NG-CRYPTO-301", "unsupported Signature-Alg")
	}
}

// issuerKeyBytes splits an issuer key string ("<scheme>:<base64>") into its
// scheme and decoded public key bytes.
func issuerKeyBytes(issuer string) (string, []byte, error) {
	scheme, b64, ok := strings.Cut(issuer, ":")
	if !ok {
		return "", nil, newError(KindCrypto, "NG-CRYPTO-101", "invalid Issuer-Key format")
	}
	raw, err := decodeBase64(b64)
	if err != nil {
		return "", nil, wrapError(KindCrypto, "NG-CRYPTO-101", "invalid Issuer-Key encoding", err)
	}
	switch scheme {
	case "ed25519":
		if len(raw) != ed25519.PublicKeySize {
			return "", nil, newError(KindCrypto, "NG-CRYPTO-102", "invalid ed25519 Issuer-Key length")
		}
	case "dilithium3":
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(raw); err != nil {
			return "", nil, wrapError(KindCrypto, "NG-CRYPTO-115", "invalid dilithium3 Issuer-Key", err)
		}
	default:
		return "", nil, newError(KindCrypto, "NG-CRYPTO-110", "unsupported Issuer-Key scheme")
	}
	return scheme, raw, nil
}

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, newError(KindCrypto, "NG-CRYPTO-302", "unsupported Hash-Alg")
	}
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
