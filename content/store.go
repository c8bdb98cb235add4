// Package content retrieves, verifies, and caches the payloads that domain
// records point at: metadata documents and the images they reference.
//
// Everything is keyed by CID. A payload fetched for a bare-CID ipfs
// reference is only served or cached after its bytes hash back to the
// reference, so a misbehaving gateway cannot poison the cache. Stores are
// content-addressed and immutable; transports (HTTP gateway, local Kubo
// node) sit behind the Fetcher.
package content

import "github.com/ipfs/go-cid"

// Store is a minimal content-addressed store for verified payloads.
//
// Contract:
//   - Put MUST be idempotent and MUST derive the returned CID from the bytes.
//   - Stored objects MUST be immutable.
//   - Get MUST return ErrNotFound when the CID is absent and MUST NOT return
//     bytes that do not hash to the requested CID.
type Store interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
