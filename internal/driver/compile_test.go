package driver_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"vecc/internal/driver"
	"vecc/internal/ir"
	"vecc/internal/wirefmt"
)

const kernelSource = `module "vadd"
target triple = "spir64-unknown-unknown"
global @out : <8 x i32>
kernel @vadd(i32 %a, i32 %b) -> void {
entry:
  %sum = add i32 %a, %b
  %lit = add i32 2, 3
  store i32 %sum, @out
  ret
}
`

func compileText(t *testing.T, api, internal string) driver.CompileOutput {
	t.Helper()
	opts, err := driver.ParseOptions(api, internal, true)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	out, err := driver.Compile([]byte(kernelSource), driver.FileText, opts, &driver.ExternalData{}, nil, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return out
}

func TestCompile_RuntimeOutputForOpenCL(t *testing.T) {
	out := compileText(t, "-vc-codegen", "")
	rt, ok := out.(*driver.RuntimeOutput)
	if !ok {
		t.Fatalf("output = %T, want *RuntimeOutput", out)
	}
	if len(rt.Kernels) != 1 {
		t.Fatalf("len(Kernels) = %d, want 1", len(rt.Kernels))
	}
	k := rt.Kernels[0]
	if k.Name != "vadd" {
		t.Errorf("kernel name = %q", k.Name)
	}
	if !strings.Contains(string(k.Binary), ".kernel vadd") {
		t.Errorf("kernel payload %q lacks the kernel directive", k.Binary)
	}
	if k.Info == nil || k.Info.Len() == 0 {
		t.Error("kernel info records are missing")
	}
}

func TestCompile_FlatOutputForCM(t *testing.T) {
	out := compileText(t, "-vc-codegen", "-binary-format=cm")
	flat, ok := out.(*driver.FlatOutput)
	if !ok {
		t.Fatalf("output = %T, want *FlatOutput", out)
	}
	if !strings.Contains(string(flat.Binary), ".kernel vadd") {
		t.Errorf("flat payload %q lacks the kernel", flat.Binary)
	}
	if !strings.Contains(string(flat.Binary), ".global out") {
		t.Errorf("flat payload %q lacks the global", flat.Binary)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	first := compileText(t, "-vc-codegen", "-binary-format=cm").(*driver.FlatOutput)
	second := compileText(t, "-vc-codegen", "-binary-format=cm").(*driver.FlatOutput)
	if !bytes.Equal(first.Binary, second.Binary) {
		t.Error("identical inputs produced different payloads")
	}
}

func TestCompile_ConstantFoldingAtFullOptimization(t *testing.T) {
	out := compileText(t, "-vc-codegen", "-binary-format=cm").(*driver.FlatOutput)
	if !strings.Contains(string(out.Binary), "mov (1) lit 5") {
		t.Errorf("payload %q should carry the folded constant", out.Binary)
	}

	none := compileText(t, "-vc-codegen -vc-optimize=none", "-binary-format=cm").(*driver.FlatOutput)
	if !strings.Contains(string(none.Binary), "add (1) lit") {
		t.Errorf("unoptimized payload %q should keep the add", none.Binary)
	}
}

func TestCompile_TripleNormalization(t *testing.T) {
	opts, err := driver.ParseOptions("-vc-codegen", "-dump-llvm-ir", false)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	d := &recordingDumper{}
	opts.Dumper = d
	if _, err := driver.Compile([]byte(kernelSource), driver.FileText, opts, &driver.ExternalData{}, nil, nil); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	final := d.modules["final.vir"]
	if !strings.Contains(final, `target triple = "genx64-unknown-unknown"`) {
		t.Errorf("final module %q does not carry the canonical triple", final)
	}
	if !strings.Contains(final, "target datalayout") {
		t.Errorf("final module %q does not carry the machine data layout", final)
	}
}

func TestCompile_DumpSnapshotsInOrder(t *testing.T) {
	opts, err := driver.ParseOptions("-vc-codegen", "-dump-llvm-ir -dump-isa-binary", false)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	d := &recordingDumper{}
	opts.Dumper = d
	if _, err := driver.Compile([]byte(kernelSource), driver.FileText, opts, &driver.ExternalData{}, nil, nil); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []string{"after_reader.vir", "after_adaptors.vir", "before_passes.vir", "optimized.vir", "final.vir", "final.isa"}
	if len(d.order) != len(want) {
		t.Fatalf("dump order = %v, want %v", d.order, want)
	}
	for i, name := range want {
		if d.order[i] != name {
			t.Errorf("dump[%d] = %q, want %q", i, d.order[i], name)
		}
	}
}

func TestCompile_ParseErrorForBadText(t *testing.T) {
	captureDiagnostics(t)
	opts, _ := driver.ParseOptions("-vc-codegen", "", false)
	_, err := driver.Compile([]byte("gibberish\n"), driver.FileText, opts, &driver.ExternalData{}, nil, nil)
	var pe *driver.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func TestCompile_InvalidModuleError(t *testing.T) {
	src := "func @f() {\nentry:\n  %x = add i32 %ghost, 1\n  ret\n}\n"
	opts, _ := driver.ParseOptions("-vc-codegen", "", false)
	_, err := driver.Compile([]byte(src), driver.FileText, opts, &driver.ExternalData{}, nil, nil)
	var ime *driver.InvalidModuleError
	if !errors.As(err, &ime) {
		t.Fatalf("err = %v, want InvalidModuleError", err)
	}
	if !strings.Contains(ime.Err.Error(), "%ghost") {
		t.Errorf("wrapped verification error = %v", ime.Err)
	}
}

func TestCompile_BadEncodingError(t *testing.T) {
	opts, _ := driver.ParseOptions("-vc-codegen", "", false)
	_, err := driver.Compile([]byte("garbage"), driver.FileBinary, opts, &driver.ExternalData{}, nil, nil)
	var bee *driver.BadEncodingError
	if !errors.As(err, &bee) {
		t.Fatalf("err = %v, want BadEncodingError", err)
	}
}

func TestCompile_SpecConstLengthMismatch(t *testing.T) {
	opts, _ := driver.ParseOptions("-vc-codegen", "", false)
	_, err := driver.Compile([]byte(kernelSource), driver.FileText, opts, &driver.ExternalData{},
		[]uint32{1}, nil)
	if err == nil {
		t.Fatal("mismatched spec constant arrays must be rejected")
	}
}

func TestCompile_WirePath(t *testing.T) {
	m, err := ir.Parse([]byte(`module "wired"
specconst 5 %simd : i32 = 0
func @entry(i32 %a) -> void wire_kernel {
start:
  ret
}
`), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	encoded, err := ir.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	input := wirefmt.Wrap(encoded)

	opts, _ := driver.ParseOptions("-vc-codegen", "", false)
	out, err := driver.Compile(input, driver.FileWire, opts, &driver.ExternalData{},
		[]uint32{5}, []uint64{16})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	rt, ok := out.(*driver.RuntimeOutput)
	if !ok {
		t.Fatalf("output = %T, want *RuntimeOutput", out)
	}
	// The wire reader marks kernels with an attribute; the adaptor must have
	// promoted it.
	if len(rt.Kernels) != 1 || rt.Kernels[0].Name != "entry" {
		t.Fatalf("Kernels = %+v", rt.Kernels)
	}
}

func TestCompile_GuardReleasedOnError(t *testing.T) {
	captureDiagnostics(t)
	opts, _ := driver.ParseOptions("-vc-codegen", "", false)
	_, err := driver.Compile([]byte("broken\n"), driver.FileText, opts, &driver.ExternalData{}, nil, nil)
	if err == nil {
		t.Fatal("expected a parse failure")
	}
	// A second invocation deadlocks if the first leaked the guard.
	compileText(t, "-vc-codegen", "")
}

// recordingDumper captures dump snapshots in call order.
type recordingDumper struct {
	order   []string
	modules map[string]string
}

func (d *recordingDumper) DumpModule(m *ir.Module, name string) {
	if d.modules == nil {
		d.modules = make(map[string]string)
	}
	d.order = append(d.order, name)
	d.modules[name] = ir.String(m)
}

func (d *recordingDumper) DumpBinary(data []byte, name string) {
	d.order = append(d.order, name)
}
