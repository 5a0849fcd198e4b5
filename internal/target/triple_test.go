package target_test

import (
	"testing"

	"vecc/internal/target"
)

func TestNormalizeTriple(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", target.Triple64},
		{"spir64", target.Triple64},
		{"spir", target.Triple64},
		{"spir32-unknown-unknown", target.Triple32},
		{"genx32", target.Triple32},
		{"genx32-weird-vendor", target.Triple32},
		{"genx64-unknown-unknown", target.Triple64},
		{"x86", target.Triple64},
		{"arm32-linux-gnu", target.Triple32},
	}
	for _, tc := range cases {
		if got := target.NormalizeTriple(tc.in); got != tc.want {
			t.Errorf("NormalizeTriple(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTriple_Idempotent(t *testing.T) {
	for _, in := range []string{"", "spir64-foo-bar", "genx32", "anything at all"} {
		once := target.NormalizeTriple(in)
		if twice := target.NormalizeTriple(once); twice != once {
			t.Errorf("NormalizeTriple(NormalizeTriple(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestPointerSizeForTriple(t *testing.T) {
	if got := target.PointerSizeForTriple(target.Triple32); got != 32 {
		t.Errorf("PointerSizeForTriple(32-bit) = %d", got)
	}
	if got := target.PointerSizeForTriple(target.Triple64); got != 64 {
		t.Errorf("PointerSizeForTriple(64-bit) = %d", got)
	}
}

func TestArchName(t *testing.T) {
	if got := target.ArchName("genx64-unknown-unknown"); got != "genx64" {
		t.Errorf("ArchName = %q", got)
	}
	if got := target.ArchName("bare"); got != "bare" {
		t.Errorf("ArchName = %q", got)
	}
}
