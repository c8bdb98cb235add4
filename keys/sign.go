package keys

import (
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// GenerateDilithium3Keypair returns a new Dilithium3 keypair for post-quantum
// evidence signatures.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}
