package token

import (
	"strings"

	"golang.org/x/crypto/sha3"
)

// Namehash derives the on-chain identifier for a domain name by the
// recursive label-hash construction of EIP-137: starting from the zero node,
// each label from the TLD inward contributes
// node = keccak256(node || keccak256(label)).
//
// The name is hashed exactly as given; case folding and other normalization
// are the caller's job. The empty name is the zero ID.
func Namehash(domain string) ID {
	var node ID
	if domain == "" {
		return node
	}
	labels := strings.Split(domain, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		node = ChildID(node, labels[i])
	}
	return node
}

// ChildID derives the identifier of label under parent. It is the single
// step of Namehash, exposed so registries can extend an already known node
// without rehashing the whole name.
func ChildID(parent ID, label string) ID {
	lh := keccak([]byte(label))
	return keccak(parent[:], lh[:])
}

func keccak(parts ...[]byte) ID {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out ID
	h.Sum(out[:0])
	return out
}
