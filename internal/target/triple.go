// Package target models the destination vector ISA: triple normalization,
// subtarget features, the target registry and the target machine with its
// code-emission pipeline.
package target

import "strings"

// The two canonical triples. Every input triple normalizes to one of these;
// all other triple detail is discarded.
const (
	Triple32 = "genx32-unknown-unknown"
	Triple64 = "genx64-unknown-unknown"
)

// NormalizeTriple maps any triple string to one of the two canonical forms.
// Bit width comes from the parsed architecture field, except that a raw
// triple beginning with the genx32 marker is 32-bit no matter what the
// architecture field claims. Total and idempotent.
func NormalizeTriple(raw string) string {
	arch := raw
	if idx := strings.IndexByte(raw, '-'); idx >= 0 {
		arch = raw[:idx]
	}
	is32 := strings.HasSuffix(arch, "32")
	if strings.HasPrefix(raw, "genx32") {
		is32 = true
	}
	if is32 {
		return Triple32
	}
	return Triple64
}

// PointerSizeForTriple returns the pointer width in bits of a canonical
// triple.
func PointerSizeForTriple(triple string) int {
	if strings.HasPrefix(triple, "genx32") {
		return 32
	}
	return 64
}

// ArchName returns the architecture field of a triple, used for registry
// lookup.
func ArchName(triple string) string {
	if idx := strings.IndexByte(triple, '-'); idx >= 0 {
		return triple[:idx]
	}
	return triple
}
