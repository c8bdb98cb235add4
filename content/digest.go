package content

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// DigestCID returns the CIDv1 (raw codec, sha2-256 multihash) of data. This
// is the single CID contract of the package; every store and every
// verification step uses it.
func DigestCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// DigestString returns the canonical string form of DigestCID, or "" if the
// digest cannot be computed. Convenient for logging and evidence rendering.
func DigestString(data []byte) string {
	id, err := DigestCID(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// VerifyCID checks that data hashes to want. It returns ErrInvalidCID for an
// undefined want and ErrCIDMismatch when the bytes do not match.
func VerifyCID(data []byte, want cid.Cid) error {
	if !want.Defined() {
		return ErrInvalidCID
	}
	got, err := DigestCID(data)
	if err != nil {
		return err
	}
	if !got.Equals(want) {
		return ErrCIDMismatch
	}
	return nil
}
