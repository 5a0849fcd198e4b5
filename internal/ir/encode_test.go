package ir_test

import (
	"strings"
	"testing"

	"vecc/internal/ir"
)

func testModule(t *testing.T) *ir.Module {
	t.Helper()
	m, err := ir.Parse([]byte(sampleModule), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	m := testModule(t)
	data, err := ir.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !ir.HasBinaryMagic(data) {
		t.Fatal("encoded module lacks the binary magic")
	}

	got, err := ir.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.SourceFormat != ir.SourceBinary {
		t.Errorf("SourceFormat = %v, want SourceBinary", got.SourceFormat)
	}
	if got.Name != m.Name || got.TargetTriple != m.TargetTriple {
		t.Errorf("decoded header = %q/%q", got.Name, got.TargetTriple)
	}
	if ir.String(got) != ir.String(m) {
		t.Errorf("decoded module differs:\n%s\nwant:\n%s", ir.String(got), ir.String(m))
	}
	if err := ir.Verify(got); err != nil {
		t.Errorf("Verify after decode: %v", err)
	}
}

func TestDecode_BadMagic(t *testing.T) {
	_, err := ir.Decode([]byte("XXXXnot a module"))
	if err == nil || !strings.Contains(err.Error(), "bad magic") {
		t.Fatalf("Decode = %v, want bad magic error", err)
	}
}

func TestDecode_CorruptedPayload(t *testing.T) {
	m := testModule(t)
	data, err := ir.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// 0xc1 is never a valid msgpack byte.
	corrupt := append(append([]byte(nil), data[:4]...), 0xc1)
	_, err = ir.Decode(corrupt)
	if err == nil || !strings.Contains(err.Error(), "corrupted module payload") {
		t.Fatalf("Decode = %v, want corrupted payload error", err)
	}
}
