// Package keys manages the Ed25519 signing keys used for resolution
// evidence.
//
// The stable surface is the pure, deterministic primitives: seed parsing,
// issuer-key formatting, and role-seed derivation. The filesystem-backed
// KeyStore is a local-first convenience for the CLI and daemon, not a
// long-term contract.
package keys
