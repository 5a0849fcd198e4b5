package target_test

import (
	"bytes"
	"strings"
	"testing"

	"vecc/internal/ir"
	"vecc/internal/passes"
	"vecc/internal/target"
)

func genx64Machine(t *testing.T, features string) *target.Machine {
	t.Helper()
	target.RegisterGenX()
	tm, err := target.Lookup("genx64").CreateMachine(target.Config{
		Triple:   target.Triple64,
		Features: features,
	})
	if err != nil {
		t.Fatalf("CreateMachine: %v", err)
	}
	return tm
}

func TestCreateMachine_TripleMismatch(t *testing.T) {
	target.RegisterGenX()
	_, err := target.Lookup("genx64").CreateMachine(target.Config{Triple: target.Triple32})
	if err == nil {
		t.Fatal("a 32-bit triple must not build a machine for the 64-bit target")
	}
}

func TestCreateMachine_UnregisteredTargetPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("nil target must panic")
		}
	}()
	var missing *target.Target
	_, _ = missing.CreateMachine(target.Config{Triple: target.Triple64})
}

func TestMachine_DataLayout(t *testing.T) {
	tm := genx64Machine(t, "")
	if got := tm.DataLayout(); got != "e-p:64:64-i64:64-v128:128" {
		t.Errorf("DataLayout = %q", got)
	}
	if got := tm.PointerSizeInBits(); got != 64 {
		t.Errorf("PointerSizeInBits = %d", got)
	}
}

func TestMachine_HasFeature(t *testing.T) {
	tm := genx64Machine(t, "+ocl_runtime,-disable_jump_tables")
	if !tm.HasFeature("ocl_runtime") {
		t.Error("enabled feature not visible")
	}
	if tm.HasFeature("disable_jump_tables") {
		t.Error("disabled feature reported as enabled")
	}
	if tm.HasFeature("never_mentioned") {
		t.Error("unknown feature reported as enabled")
	}
}

func TestMachine_AdjustBuilderDisablesVectorizers(t *testing.T) {
	tm := genx64Machine(t, "")
	b := &passes.Builder{SLPVectorize: true, LoopVectorize: true}
	tm.AdjustBuilder(b)
	if b.SLPVectorize || b.LoopVectorize {
		t.Errorf("vectorizers survived AdjustBuilder: %+v", b)
	}
}

func TestMachine_AddEmitPasses(t *testing.T) {
	tm := genx64Machine(t, "")
	var buf bytes.Buffer
	pm := passes.NewManager("emit-test")
	if bad := tm.AddEmitPasses(pm, &buf, target.FileObject); !bad {
		t.Fatal("object emission is not supported and must be reported")
	}
	if bad := tm.AddEmitPasses(pm, &buf, target.FileAssembly); bad {
		t.Fatal("assembly emission must be supported")
	}

	src := "module \"m\"\nkernel @k(i32 %a) -> void {\nentry:\n  %x = add i32 %a, 1\n  ret\n}\n"
	m, err := ir.Parse([]byte(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pm.Run(m)
	out := buf.String()
	for _, want := range []string{".kernel k", ".arg a i32", "add (1) x", ".end k"} {
		if !strings.Contains(out, want) {
			t.Errorf("assembly %q is missing %q", out, want)
		}
	}
}

func TestMachine_LegacyMessageTranslation(t *testing.T) {
	src := "func @f(i32 %p) -> void {\nentry:\n  %v = load i32 %p\n  store i32 %v, %p\n  ret\n}\n"
	m, err := ir.Parse([]byte(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f := m.NamedFunc("f")

	plain := genx64Machine(t, "")
	if out := string(plain.KernelBinary(f)); !strings.Contains(out, "ld (1)") || strings.Contains(out, "send.") {
		t.Errorf("plain machine emitted %q", out)
	}
	translated := genx64Machine(t, "+translate_legacy_message")
	out := string(translated.KernelBinary(f))
	if !strings.Contains(out, "send.ld") || !strings.Contains(out, "send.st") {
		t.Errorf("translating machine emitted %q", out)
	}
}
