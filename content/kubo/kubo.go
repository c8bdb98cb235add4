// Package kubo adapts a local Kubo installation into a content.Store by
// shelling out to the "ipfs" CLI.
//
// It is an optional fetch tier: when a resolver host runs its own node,
// payloads come off the local repo instead of a public HTTP gateway. The
// adapter never trusts the node; every block read is re-hashed against the
// requested CID. Blocks are written with explicit raw/sha2-256/CIDv1
// parameters so the node agrees with the package CID contract.
package kubo

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ipfs/go-cid"

	"namegate.io/namegate/content"
)

// Source is a content.Store backed by the local Kubo CLI.
type Source struct {
	bin string
	env []string
}

var _ content.Store = (*Source)(nil)

type Options struct {
	// Bin is the path to the ipfs binary. If empty, "ipfs" is used.
	Bin string
	// Env optionally overrides the command environment (e.g. to point
	// IPFS_PATH at a dedicated repo). If nil, the process environment is
	// used.
	Env []string
}

func New(opts Options) *Source {
	bin := opts.Bin
	if bin == "" {
		bin = "ipfs"
	}
	return &Source{bin: bin, env: opts.Env}
}

func (s *Source) Put(data []byte) (cid.Cid, error) {
	id, err := content.DigestCID(data)
	if err != nil {
		return cid.Undef, err
	}

	out, err := s.run(data,
		"block", "put",
		"--quiet",
		"--format=raw",
		"--mhtype=sha2-256",
		"--mhlen=32",
		"--cid-version=1",
		"/dev/stdin",
	)
	if err != nil {
		return cid.Undef, err
	}

	got, err := cid.Decode(strings.TrimSpace(string(out)))
	if err != nil {
		return cid.Undef, fmt.Errorf("kubo: unexpected block put output: %w", err)
	}
	if !got.Equals(id) {
		return cid.Undef, content.ErrCIDMismatch
	}
	return id, nil
}

func (s *Source) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, content.ErrInvalidCID
	}
	out, err := s.run(nil, "block", "get", id.String())
	if err != nil {
		if isLikelyNotFound(err) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	if err := content.VerifyCID(out, id); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Source) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := s.run(nil, "block", "stat", id.String())
	return err == nil
}

func (s *Source) run(stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.Command(s.bin, args...)
	if s.env != nil {
		cmd.Env = s.env
	}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		msg := strings.TrimSpace(string(ee.Stderr))
		if msg == "" {
			return nil, fmt.Errorf("kubo: %v", err)
		}
		return nil, fmt.Errorf("kubo: %s", msg)
	}
	return nil, err
}

func isLikelyNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "block not found")
}
