package ir_test

import (
	"bytes"
	"strings"
	"testing"

	"vecc/internal/ir"
)

const sampleModule = `module "sample"
target triple = "genx64-unknown-unknown"
specconst 3 %width : i32 = 16
global @buf : <8 x i32>
declare @vx.printf(i32 %fmt) -> void
kernel @main(i32 %a, <8 x i32> %v) -> void {
entry:
  %x = add i32 %a, 2
  %c = mov i32 1
  brcond %c, body, done
body:
  %y = mul i32 %x, %x
  store <8 x i32> %v, @buf
  br done
done:
  ret
}
`

func TestParse_SampleModule(t *testing.T) {
	m, err := ir.Parse([]byte(sampleModule), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Name != "sample" {
		t.Errorf("Name = %q, want %q", m.Name, "sample")
	}
	if m.TargetTriple != "genx64-unknown-unknown" {
		t.Errorf("TargetTriple = %q", m.TargetTriple)
	}
	if m.SourceFormat != ir.SourceText {
		t.Errorf("SourceFormat = %v, want SourceText", m.SourceFormat)
	}
	if len(m.SpecConsts) != 1 || m.SpecConsts[0].ID != 3 || m.SpecConsts[0].Value != 16 {
		t.Errorf("SpecConsts = %+v", m.SpecConsts)
	}
	if len(m.Funcs) != 2 {
		t.Fatalf("len(Funcs) = %d, want 2", len(m.Funcs))
	}
	decl := m.NamedFunc("vx.printf")
	if decl == nil || !decl.Declaration() {
		t.Fatalf("vx.printf should be a declaration")
	}
	main := m.NamedFunc("main")
	if main == nil || !main.Kernel {
		t.Fatalf("main should be a kernel")
	}
	if len(main.Blocks) != 3 {
		t.Errorf("len(main.Blocks) = %d, want 3", len(main.Blocks))
	}
	if err := ir.Verify(m); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	m, err := ir.Parse([]byte(sampleModule), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	printed := ir.String(m)
	m2, err := ir.Parse([]byte(printed), nil)
	if err != nil {
		t.Fatalf("Parse of printed form: %v\n%s", err, printed)
	}
	if ir.String(m2) != printed {
		t.Errorf("printed form is not stable:\n--- first\n%s\n--- second\n%s", printed, ir.String(m2))
	}
}

func TestParse_SyntaxErrorWithPosition(t *testing.T) {
	var diag bytes.Buffer
	src := "module \"bad\"\nfrobnicate\n"
	if _, err := ir.Parse([]byte(src), &diag); err == nil {
		t.Fatal("expected a syntax error")
	}
	out := diag.String()
	if !strings.Contains(out, "module:2:") || !strings.Contains(out, "error:") {
		t.Errorf("diagnostic %q lacks position or severity", out)
	}
}

func TestParse_InstructionOutsideBlock(t *testing.T) {
	src := "func @f() {\n  ret\n}\n"
	if _, err := ir.Parse([]byte(src), nil); err == nil {
		t.Fatal("instruction before any label must fail")
	}
}

func TestParse_OperandArity(t *testing.T) {
	src := "func @f() {\nentry:\n  %x = add i32 1\n  ret\n}\n"
	if _, err := ir.Parse([]byte(src), nil); err == nil {
		t.Fatal("add with one operand must fail")
	}
}

func TestParseType(t *testing.T) {
	cases := []struct {
		in   string
		want ir.Type
	}{
		{"void", ir.Void()},
		{"i32", ir.Int(32)},
		{"f64", ir.Float(64)},
		{"<8 x i32>", ir.Vec(ir.Int(32), 8)},
	}
	for _, tc := range cases {
		got, err := ir.ParseType(tc.in)
		if err != nil {
			t.Errorf("ParseType(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseType(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if got.String() != tc.in {
			t.Errorf("ParseType(%q).String() = %q", tc.in, got.String())
		}
	}
	for _, bad := range []string{"", "x32", "<i32 x 8>", "i"} {
		if _, err := ir.ParseType(bad); err == nil {
			t.Errorf("ParseType(%q) should fail", bad)
		}
	}
}
