package token

import "testing"

// Expected values are the published EIP-137 reference vectors.
func TestNamehashVectors(t *testing.T) {
	cases := []struct {
		name   string
		domain string
		want   string
	}{
		{
			"empty name is the zero node",
			"",
			"0x0000000000000000000000000000000000000000000000000000000000000000",
		},
		{
			"tld only",
			"eth",
			"0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae",
		},
		{
			"second level",
			"foo.eth",
			"0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Namehash(tc.domain).Hex(); got != tc.want {
				t.Fatalf("Namehash(%q): got %s want %s", tc.domain, got, tc.want)
			}
		})
	}
}

func TestChildIDExtendsParent(t *testing.T) {
	parent := Namehash("eth")
	if got, want := ChildID(parent, "foo"), Namehash("foo.eth"); got != want {
		t.Fatalf("ChildID: got %s want %s", got, want)
	}
	if got, want := ChildID(ChildID(parent, "foo"), "bar"), Namehash("bar.foo.eth"); got != want {
		t.Fatalf("nested ChildID: got %s want %s", got, want)
	}
}

func TestNamehashIsCaseSensitive(t *testing.T) {
	if Namehash("Foo.eth") == Namehash("foo.eth") {
		t.Fatalf("Namehash folded case; normalization belongs to callers")
	}
}
