package target

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"vecc/internal/ir"
)

// emitPass lowers the module to assembly text. Emission is deterministic: a
// fixed module always produces identical bytes.
type emitPass struct {
	machine *Machine
	w       io.Writer
}

func (*emitPass) Name() string { return "emit" }

func (p *emitPass) Run(m *ir.Module) {
	fmt.Fprintf(p.w, "// module %q triple=%s cpu=%q\n", m.Name, p.machine.triple, p.machine.cpu)
	if p.machine.featStr != "" {
		fmt.Fprintf(p.w, "// features %s\n", p.machine.featStr)
	}
	for _, g := range m.Globals {
		fmt.Fprintf(p.w, ".global %s size=%d\n", g.Name, g.Type.SizeInBytes())
	}
	for _, f := range m.Funcs {
		if f.Declaration() {
			continue
		}
		p.machine.EmitFunc(p.w, f)
	}
}

// EmitFunc writes the assembly of one function. Shared between whole-module
// emission and the per-kernel payload harvesting of the runtime-info path.
func (m *Machine) EmitFunc(w io.Writer, f *ir.Func) {
	directive := ".func"
	if f.Kernel {
		directive = ".kernel"
	}
	fmt.Fprintf(w, "%s %s\n", directive, f.Name)
	for _, p := range f.Params {
		fmt.Fprintf(w, "  .arg %s %s\n", p.Name, p.Type)
	}
	for bi := range f.Blocks {
		b := &f.Blocks[bi]
		fmt.Fprintf(w, "%s.%s:\n", f.Name, b.Label)
		for _, in := range b.Instrs {
			m.emitInstr(w, f, in)
		}
	}
	fmt.Fprintf(w, ".end %s\n", f.Name)
}

// KernelBinary renders the standalone payload of one kernel.
func (m *Machine) KernelBinary(f *ir.Func) []byte {
	var buf bytes.Buffer
	m.EmitFunc(&buf, f)
	return buf.Bytes()
}

func (m *Machine) emitInstr(w io.Writer, f *ir.Func, in ir.Instr) {
	lanes := in.Type.Lanes
	if lanes == 0 {
		lanes = 1
	}
	switch in.Op {
	case ir.OpRet:
		if len(in.Args) == 1 {
			fmt.Fprintf(w, "  mov (1) retval %s\n", operandText(in.Args[0]))
		}
		fmt.Fprintf(w, "  ret\n")
	case ir.OpBr:
		fmt.Fprintf(w, "  jmpi %s.%s\n", f.Name, in.Labels[0])
	case ir.OpBrCond:
		fmt.Fprintf(w, "  cmp (1) f0 %s 0\n", operandText(in.Args[0]))
		fmt.Fprintf(w, "  (f0) jmpi %s.%s\n", f.Name, in.Labels[0])
		fmt.Fprintf(w, "  jmpi %s.%s\n", f.Name, in.Labels[1])
	case ir.OpCall:
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = operandText(a)
		}
		dst := in.Dst
		if dst == "" {
			dst = "null"
		}
		fmt.Fprintf(w, "  call (%d) %s %s %s\n", lanes, dst, in.Callee, strings.Join(args, " "))
	case ir.OpLoad:
		fmt.Fprintf(w, "  %s (%d) %s %s\n", m.loadOp(), lanes, in.Dst, operandText(in.Args[0]))
	case ir.OpStore:
		fmt.Fprintf(w, "  %s (%d) %s %s\n", m.storeOp(), lanes, operandText(in.Args[1]), operandText(in.Args[0]))
	default:
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = operandText(a)
		}
		fmt.Fprintf(w, "  %s (%d) %s %s\n", in.Op, lanes, in.Dst, strings.Join(args, " "))
	}
}

// Legacy memory message translation picks the modern send spellings.
func (m *Machine) loadOp() string {
	if m.HasFeature("translate_legacy_message") {
		return "send.ld"
	}
	return "ld"
}

func (m *Machine) storeOp() string {
	if m.HasFeature("translate_legacy_message") {
		return "send.st"
	}
	return "st"
}

func operandText(o ir.Operand) string {
	switch o.Kind {
	case ir.OperandRef, ir.OperandGlobal:
		return o.Ref
	}
	return fmt.Sprintf("%d", o.Imm)
}
