package content

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// Tiered layers several stores into one cache hierarchy.
//
// Get falls back through the tiers in slice order and only keeps going on
// ErrNotFound; any other failure is a real fault and propagates. Put writes
// through to every tier and requires all of them to agree on the CID, so a
// hot MemCache tier and a durable DiskCache tier never diverge. Callers
// MUST supply a fixed tier order.
type Tiered struct {
	Tiers []Store
}

var _ Store = Tiered{}

func (t Tiered) Put(data []byte) (cid.Cid, error) {
	if len(t.Tiers) == 0 {
		return cid.Undef, errors.New("content: Tiered has no tiers")
	}
	want, err := DigestCID(data)
	if err != nil {
		return cid.Undef, err
	}
	for _, s := range t.Tiers {
		got, err := s.Put(data)
		if err != nil {
			return cid.Undef, err
		}
		if !got.Equals(want) {
			return cid.Undef, ErrCIDMismatch
		}
	}
	return want, nil
}

func (t Tiered) Get(id cid.Cid) ([]byte, error) {
	for _, s := range t.Tiers {
		b, err := s.Get(id)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (t Tiered) Has(id cid.Cid) bool {
	for _, s := range t.Tiers {
		if s.Has(id) {
			return true
		}
	}
	return false
}
