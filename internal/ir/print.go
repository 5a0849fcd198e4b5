package ir

import (
	"fmt"
	"io"
	"strings"
)

// String renders m in its textual form.
func String(m *Module) string {
	var b strings.Builder
	Print(&b, m)
	return b.String()
}

// Print writes the textual form of m, round-trippable through Parse.
func Print(w io.Writer, m *Module) {
	if m.Name != "" {
		fmt.Fprintf(w, "module %q\n", m.Name)
	}
	if m.TargetTriple != "" {
		fmt.Fprintf(w, "target triple = %q\n", m.TargetTriple)
	}
	if m.DataLayout != "" {
		fmt.Fprintf(w, "target datalayout = %q\n", m.DataLayout)
	}
	for _, sc := range m.SpecConsts {
		fmt.Fprintf(w, "specconst %d %%%s : i%d = %d\n", sc.ID, sc.Name, sc.Bits, sc.Value)
	}
	for _, g := range m.Globals {
		fmt.Fprintf(w, "global @%s : %s\n", g.Name, g.Type)
	}
	for _, f := range m.Funcs {
		printFunc(w, f)
	}
}

func (m *Module) String() string {
	var sb strings.Builder
	Print(&sb, m)
	return sb.String()
}

func printFunc(w io.Writer, f *Func) {
	var params []string
	for _, p := range f.Params {
		params = append(params, fmt.Sprintf("%s %%%s", p.Type, p.Name))
	}
	sig := fmt.Sprintf("@%s(%s) -> %s", f.Name, strings.Join(params, ", "), f.Ret)
	if len(f.Attrs) > 0 {
		sig += " " + strings.Join(f.Attrs, " ")
	}
	if f.Declaration() {
		fmt.Fprintf(w, "declare %s\n", sig)
		return
	}
	kw := "func"
	if f.Kernel {
		kw = "kernel"
	}
	fmt.Fprintf(w, "%s %s {\n", kw, sig)
	for i := range f.Blocks {
		b := &f.Blocks[i]
		fmt.Fprintf(w, "%s:\n", b.Label)
		for _, in := range b.Instrs {
			fmt.Fprintf(w, "  %s\n", formatInstr(in))
		}
	}
	fmt.Fprintln(w, "}")
}

func formatInstr(in Instr) string {
	var sb strings.Builder
	if in.Dst != "" {
		sb.WriteString("%" + in.Dst + " = ")
	}
	sb.WriteString(in.Op.String())
	switch in.Op {
	case OpRet:
		if len(in.Args) == 1 {
			sb.WriteString(" " + formatOperand(in.Args[0]))
		}
	case OpBr:
		sb.WriteString(" " + in.Labels[0])
	case OpBrCond:
		sb.WriteString(" " + formatOperand(in.Args[0]) + ", " + in.Labels[0] + ", " + in.Labels[1])
	case OpCall:
		var args []string
		for _, a := range in.Args {
			args = append(args, formatOperand(a))
		}
		fmt.Fprintf(&sb, " %s @%s(%s)", in.Type, in.Callee, strings.Join(args, ", "))
	default:
		sb.WriteString(" " + in.Type.String())
		for i, a := range in.Args {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" " + formatOperand(a))
		}
	}
	return sb.String()
}

func formatOperand(o Operand) string {
	switch o.Kind {
	case OperandRef:
		return "%" + o.Ref
	case OperandGlobal:
		return "@" + o.Ref
	}
	return fmt.Sprintf("%d", o.Imm)
}
