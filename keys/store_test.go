package keys

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSeed(b byte) []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestKeyStore_RootAndRoleLifecycle(t *testing.T) {
	ks, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	seed := testSeed(0x21)

	issuer, path, err := ks.InitRootKey("resolver-a", seed, false)
	if err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}
	if issuer != IssuerKeyFromSeed(seed) {
		t.Fatalf("issuer: got %q want %q", issuer, IssuerKeyFromSeed(seed))
	}
	if filepath.Base(path) != "root.key" {
		t.Fatalf("unexpected root key path %q", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("root key mode: got %o want 600", perm)
	}

	// A second init without overwrite must not clobber the seed.
	if _, _, err := ks.InitRootKey("resolver-a", testSeed(0x22), false); err == nil {
		t.Fatalf("expected second InitRootKey to fail without overwrite")
	}

	roleIssuer, _, err := ks.DeriveRoleKey("resolver-a", "serving", false)
	if err != nil {
		t.Fatalf("DeriveRoleKey: %v", err)
	}
	wantRole, err := DeriveRoleSeed(seed, "serving")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if roleIssuer != IssuerKeyFromSeed(wantRole) {
		t.Fatalf("role issuer mismatch")
	}

	got, err := ks.IssuerKey("resolver-a", "serving")
	if err != nil {
		t.Fatalf("IssuerKey: %v", err)
	}
	if got != roleIssuer {
		t.Fatalf("IssuerKey: got %q want %q", got, roleIssuer)
	}

	entries, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "resolver-a" {
		t.Fatalf("List: got %+v", entries)
	}
	if len(entries[0].Roles) != 1 || entries[0].Roles[0] != "serving" {
		t.Fatalf("List roles: got %+v", entries[0].Roles)
	}
}

func TestKeyStore_LoadSeedSources(t *testing.T) {
	ks, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	seed := testSeed(0x33)
	if _, _, err := ks.InitRootKey("gate", seed, false); err != nil {
		t.Fatalf("InitRootKey: %v", err)
	}

	hexSeed := strings.Repeat("44", ed25519.SeedSize)
	fromHex, err := ks.LoadSeed("0x"+hexSeed, "", "", "")
	if err != nil {
		t.Fatalf("LoadSeed hex: %v", err)
	}
	if len(fromHex) != ed25519.SeedSize || fromHex[0] != 0x44 {
		t.Fatalf("LoadSeed hex: got %x", fromHex)
	}

	fromName, err := ks.LoadSeed("", "gate", "", "")
	if err != nil {
		t.Fatalf("LoadSeed name: %v", err)
	}
	if string(fromName) != string(seed) {
		t.Fatalf("LoadSeed name returned wrong seed")
	}

	fromFile, err := ks.LoadSeed("", "", "", filepath.Join(ks.Directory, "gate", "root.key"))
	if err != nil {
		t.Fatalf("LoadSeed file: %v", err)
	}
	if string(fromFile) != string(seed) {
		t.Fatalf("LoadSeed file returned wrong seed")
	}

	if _, err := ks.LoadSeed("", "", "", ""); err == nil {
		t.Fatalf("expected LoadSeed with no source to fail")
	}
}

func TestCheckKeyNameAndRole(t *testing.T) {
	for _, ok := range []string{"a", "resolver-a", "Main_01"} {
		if err := CheckKeyName(ok); err != nil {
			t.Fatalf("CheckKeyName(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a/b", "a b", "dot.dot", "../up"} {
		if err := CheckKeyName(bad); err == nil {
			t.Fatalf("CheckKeyName(%q): expected error", bad)
		}
	}
	if err := CheckRole("serving"); err != nil {
		t.Fatalf("CheckRole: %v", err)
	}
	if err := CheckRole("no/slash"); err == nil {
		t.Fatalf("CheckRole accepted slash")
	}
}

func TestParseSeedHex(t *testing.T) {
	want := testSeed(0x55)
	hexSeed := strings.Repeat("55", ed25519.SeedSize)

	for _, in := range []string{hexSeed, "0x" + hexSeed, "  " + hexSeed + "\n"} {
		got, err := ParseSeedHex(in)
		if err != nil {
			t.Fatalf("ParseSeedHex(%q): %v", in, err)
		}
		if string(got) != string(want) {
			t.Fatalf("ParseSeedHex(%q): wrong seed", in)
		}
	}

	for _, bad := range []string{"", "zz", hexSeed[:10]} {
		if _, err := ParseSeedHex(bad); err == nil {
			t.Fatalf("ParseSeedHex(%q): expected error", bad)
		}
	}
}
