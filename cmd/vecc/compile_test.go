package main

import (
	"testing"

	"vecc/internal/driver"
	"vecc/internal/ir"
	"vecc/internal/wirefmt"
)

func TestDetectFileType_Auto(t *testing.T) {
	encoded, err := ir.Encode(&ir.Module{Name: "m"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	cases := []struct {
		name string
		data []byte
		want driver.FileType
	}{
		{"wire", wirefmt.Wrap(encoded), driver.FileWire},
		{"binary", encoded, driver.FileBinary},
		{"text", []byte("module \"m\"\n"), driver.FileText},
		{"empty", nil, driver.FileText},
	}
	for _, tc := range cases {
		got, err := detectFileType("auto", tc.data)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: detectFileType = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDetectFileType_ExplicitOverridesSniffing(t *testing.T) {
	got, err := detectFileType("text", []byte("VWF1...."))
	if err != nil || got != driver.FileText {
		t.Errorf("detectFileType = %v, %v", got, err)
	}
	if _, err := detectFileType("elf", nil); err == nil {
		t.Error("an unsupported format must be rejected")
	}
}

func TestParseSpecConsts(t *testing.T) {
	ids, vals, err := parseSpecConsts([]string{"1=16", "0x10=0x20"})
	if err != nil {
		t.Fatalf("parseSpecConsts: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 16 {
		t.Errorf("ids = %v", ids)
	}
	if vals[0] != 16 || vals[1] != 32 {
		t.Errorf("vals = %v", vals)
	}

	for _, bad := range []string{"novalue", "x=1", "1=y"} {
		if _, _, err := parseSpecConsts([]string{bad}); err == nil {
			t.Errorf("parseSpecConsts(%q) should fail", bad)
		}
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("dir/kern.vir", &driver.FlatOutput{}); got != "dir/kern.isa" {
		t.Errorf("flat output path = %q", got)
	}
	if got := outputPath("kern.vir", &driver.RuntimeOutput{}); got != "kern.vout" {
		t.Errorf("runtime output path = %q", got)
	}
}
