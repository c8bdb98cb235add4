package token

import (
	"errors"
	"testing"
)

func TestComposeVectors(t *testing.T) {
	cases := []struct {
		name    string
		low     string
		high    string
		hex     string
		decimal string
	}{
		{
			"one in the high half is 2^128",
			"0x0000000000000000", "0x0000000000000001",
			"0x0000000000000000000000000000000100000000000000000000000000000000",
			"340282366920938463463374607431768211456",
		},
		{
			"one in the low half",
			"0x1", "0x0",
			"0x0000000000000000000000000000000000000000000000000000000000000001",
			"1",
		},
		{
			"zero",
			"0x0", "0x0",
			"0x0000000000000000000000000000000000000000000000000000000000000000",
			"0",
		},
		{
			"both halves set",
			"0x2", "0x1",
			"0x0000000000000000000000000000000100000000000000000000000000000002",
			"340282366920938463463374607431768211458",
		},
		{
			"maximum value",
			"0xffffffffffffffffffffffffffffffff", "0xffffffffffffffffffffffffffffffff",
			"0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
			"115792089237316195423570985008687907853269984665640564039457584007913129639935",
		},
		{
			"uppercase prefix and digits",
			"0XAB", "0X0",
			"0x00000000000000000000000000000000000000000000000000000000000000ab",
			"171",
		},
		{
			"leading zeros beyond the half width",
			"0x0000000000000000000000000000000000000001", "0x0",
			"0x0000000000000000000000000000000000000000000000000000000000000001",
			"1",
		},
		{
			"no prefix",
			"ff", "0",
			"0x00000000000000000000000000000000000000000000000000000000000000ff",
			"255",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := Compose(tc.low, tc.high)
			if err != nil {
				t.Fatalf("Compose(%q, %q): unexpected error %v", tc.low, tc.high, err)
			}
			if got := id.Hex(); got != tc.hex {
				t.Fatalf("Hex: got %s want %s", got, tc.hex)
			}
			if got := id.String(); got != tc.hex {
				t.Fatalf("String: got %s want %s", got, tc.hex)
			}
			if got := id.Decimal(); got != tc.decimal {
				t.Fatalf("Decimal: got %s want %s", got, tc.decimal)
			}
		})
	}
}

func TestComposeErrors(t *testing.T) {
	cases := []struct {
		name   string
		low    string
		high   string
		ruleID string
	}{
		{"empty low half", "", "0x1", "NG-HEX-001"},
		{"prefix only", "0x", "0x1", "NG-HEX-001"},
		{"empty high half", "0x1", "", "NG-HEX-001"},
		{"non-hex digit", "0x12g4", "0x1", "NG-HEX-002"},
		{"bare garbage", "zz", "0x1", "NG-HEX-002"},
		{"double prefix", "0x0x1", "0x1", "NG-HEX-002"},
		{"low exceeds 128 bits", "0x100000000000000000000000000000000", "0x0", "NG-HEX-003"},
		{"high exceeds 128 bits", "0x0", "0xffffffffffffffffffffffffffffffff0", "NG-HEX-003"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := Compose(tc.low, tc.high)
			if err == nil {
				t.Fatalf("Compose(%q, %q): expected error, got %s", tc.low, tc.high, id)
			}
			if !id.IsZero() {
				t.Fatalf("Compose returned non-zero ID %s alongside error", id)
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error %v is not a *Error", err)
			}
			if e.Kind != KindInvalidHex {
				t.Fatalf("Kind: got %q want %q", e.Kind, KindInvalidHex)
			}
			if e.RuleID != tc.ruleID {
				t.Fatalf("RuleID: got %q want %q", e.RuleID, tc.ruleID)
			}
			if !IsKind(err, KindInvalidHex) {
				t.Fatalf("IsKind(err, KindInvalidHex) = false")
			}
			if RuleID(err) != tc.ruleID {
				t.Fatalf("RuleID helper: got %q want %q", RuleID(err), tc.ruleID)
			}
		})
	}
}

func TestParseIDRoundTrip(t *testing.T) {
	seeds := []struct{ low, high string }{
		{"0x0", "0x0"},
		{"0x1", "0x0"},
		{"0xdeadbeef", "0xcafe"},
		{"0xffffffffffffffffffffffffffffffff", "0xffffffffffffffffffffffffffffffff"},
	}
	for _, s := range seeds {
		id, err := Compose(s.low, s.high)
		if err != nil {
			t.Fatalf("Compose(%q, %q): %v", s.low, s.high, err)
		}
		back, err := ParseID(id.Hex())
		if err != nil {
			t.Fatalf("ParseID(%s): %v", id.Hex(), err)
		}
		if back != id {
			t.Fatalf("round trip: got %s want %s", back, id)
		}
	}
}

func TestParseIDShortForm(t *testing.T) {
	id, err := ParseID("0x1")
	if err != nil {
		t.Fatalf("ParseID: %v", err)
	}
	if got := id.Decimal(); got != "1" {
		t.Fatalf("Decimal: got %s want 1", got)
	}
}

func TestParseIDTooWide(t *testing.T) {
	in := "0x1" + "0000000000000000000000000000000000000000000000000000000000000000"
	if _, err := ParseID(in); RuleID(err) != "NG-HEX-003" {
		t.Fatalf("ParseID(%q): got rule %q want NG-HEX-003 (err %v)", in, RuleID(err), err)
	}
}

func TestIsZero(t *testing.T) {
	if !(ID{}).IsZero() {
		t.Fatalf("zero ID reported non-zero")
	}
	id, err := Compose("0x1", "0x0")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if id.IsZero() {
		t.Fatalf("non-zero ID reported zero")
	}
}
