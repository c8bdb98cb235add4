// Package token models 256-bit domain token identifiers and the two ways
// they are produced: composed from the low/high 128-bit halves a registry
// stores, or derived from the domain name itself by recursive label hashing.
//
// All operations are pure. Malformed inputs surface as *Error with
// Kind KindInvalidHex and a stable RuleID; an ID is never silently zeroed.
package token

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/bits"
	"strings"
)

// ID is a 256-bit unsigned token identifier in big-endian byte order.
//
// The zero value is the zero identifier.
type ID [32]byte

// Compose builds an ID from two independently encoded 128-bit halves,
// low first, matching the order registries store them in. Each half is a hex
// string with an optional "0x" or "0X" prefix. The numeric value of the
// result is high<<128 | low.
//
// A half must contain at least one hex digit after the prefix, only hex
// digits, and a value that fits in 128 bits. Leading zeros are allowed, so
// the width check is on the value, not the digit count. Any violation
// returns a *Error (Kind KindInvalidHex) and the zero ID.
func Compose(lowHex, highHex string) (ID, error) {
	var id ID
	if err := decodeHex("low half", lowHex, id[16:32]); err != nil {
		return ID{}, err
	}
	if err := decodeHex("high half", highHex, id[0:16]); err != nil {
		return ID{}, err
	}
	return id, nil
}

// ParseID parses a full 256-bit identifier from a hex string with an
// optional "0x"/"0X" prefix, under the same rules as Compose halves.
func ParseID(s string) (ID, error) {
	var id ID
	if err := decodeHex("token id", s, id[:]); err != nil {
		return ID{}, err
	}
	return id, nil
}

// decodeHex decodes a hex string right-aligned into dst. The value must fit
// in len(dst) bytes; leading zero digits beyond that are fine.
func decodeHex(label, raw string, dst []byte) error {
	digits := stripHexPrefix(raw)
	if digits == "" {
		return newError(KindInvalidHex, "NG-HEX-001",
			fmt.Sprintf("%s %q: no hex digits", label, raw))
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return newError(KindInvalidHex, "NG-HEX-002",
				fmt.Sprintf("%s %q: invalid hex digit %q", label, raw, digits[i]))
		}
	}
	trimmed := strings.TrimLeft(digits, "0")
	if len(trimmed) > 2*len(dst) {
		return newError(KindInvalidHex, "NG-HEX-003",
			fmt.Sprintf("%s %q: value exceeds %d bits", label, raw, 8*len(dst)))
	}
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return wrapError(KindInvalidHex, "NG-HEX-002",
			fmt.Sprintf("%s %q: malformed hex", label, raw), err)
	}
	copy(dst[len(dst)-len(b):], b)
	return nil
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		return true
	}
	return false
}

// IsZero reports whether id is the zero identifier.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Hex returns the canonical form: "0x" followed by 64 lowercase hex digits.
func (id ID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// String returns the canonical hex form. See Hex.
func (id ID) String() string {
	return id.Hex()
}

// MarshalText encodes the ID in its canonical hex form, so IDs embed in
// JSON documents as strings rather than byte arrays.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText parses the same forms ParseID accepts.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Decimal returns the identifier's value in base 10, the form on-chain
// registries report token IDs in.
func (id ID) Decimal() string {
	limbs := [4]uint64{
		binary.BigEndian.Uint64(id[0:8]),
		binary.BigEndian.Uint64(id[8:16]),
		binary.BigEndian.Uint64(id[16:24]),
		binary.BigEndian.Uint64(id[24:32]),
	}
	if limbs == [4]uint64{} {
		return "0"
	}
	var out []byte
	for limbs != [4]uint64{} {
		var rem uint64
		for i := 0; i < len(limbs); i++ {
			limbs[i], rem = bits.Div64(rem, limbs[i], 10)
		}
		out = append(out, byte('0'+rem))
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
