package passes

import (
	"fmt"

	"vecc/internal/ir"
)

var (
	statFoldedInstrs  = NewStatistic("constfold", "instructions folded to constants")
	statRemovedBlocks = NewStatistic("simplifycfg", "unreachable blocks removed")
	statInlinedCalls  = NewStatistic("inline", "call sites inlined")
	statPrunedDecls   = NewStatistic("prunedecls", "unused declarations pruned")
)

// constFoldPass folds integer arithmetic over constant operands into movs.
type constFoldPass struct{}

func (*constFoldPass) Name() string { return "constfold" }

func (*constFoldPass) RunOnFunc(f *ir.Func, _ *ir.Module) {
	for bi := range f.Blocks {
		instrs := f.Blocks[bi].Instrs
		for ii := range instrs {
			in := &instrs[ii]
			if len(in.Args) != 2 || !in.Args[0].Constant() || !in.Args[1].Constant() {
				continue
			}
			var folded int64
			switch in.Op {
			case ir.OpAdd:
				folded = in.Args[0].Imm + in.Args[1].Imm
			case ir.OpSub:
				folded = in.Args[0].Imm - in.Args[1].Imm
			case ir.OpMul:
				folded = in.Args[0].Imm * in.Args[1].Imm
			default:
				continue
			}
			in.Op = ir.OpMov
			in.Args = []ir.Operand{ir.Imm(folded)}
			statFoldedInstrs.Add(1)
		}
	}
}

// simplifyCFGPass removes blocks unreachable from the entry block.
type simplifyCFGPass struct{}

func (*simplifyCFGPass) Name() string { return "simplifycfg" }

func (*simplifyCFGPass) RunOnFunc(f *ir.Func, _ *ir.Module) {
	if len(f.Blocks) == 0 {
		return
	}
	reach := make(map[string]bool, len(f.Blocks))
	var walk func(label string)
	walk = func(label string) {
		if reach[label] {
			return
		}
		reach[label] = true
		for i := range f.Blocks {
			b := &f.Blocks[i]
			if b.Label != label || len(b.Instrs) == 0 {
				continue
			}
			for _, next := range b.Instrs[len(b.Instrs)-1].Labels {
				walk(next)
			}
		}
	}
	walk(f.Blocks[0].Label)

	kept := f.Blocks[:0]
	for _, b := range f.Blocks {
		if reach[b.Label] {
			kept = append(kept, b)
		} else {
			statRemovedBlocks.Add(1)
		}
	}
	f.Blocks = kept
}

// AttrAlwaysInline marks functions the inliner must splice into callers.
const AttrAlwaysInline = "alwaysinline"

// inlineAlwaysPass inlines calls to single-block, parameterless, void
// functions carrying the alwaysinline attribute. Wider inlining belongs to
// the code generator and is out of scope here.
type inlineAlwaysPass struct{}

func (*inlineAlwaysPass) Name() string { return "inline" }

func (*inlineAlwaysPass) Run(m *ir.Module) {
	for _, f := range m.Funcs {
		if f.Declaration() {
			continue
		}
		inlineIntoFunc(f, m)
	}
}

func inlineIntoFunc(f *ir.Func, m *ir.Module) {
	for bi := range f.Blocks {
		b := &f.Blocks[bi]
		for ii := 0; ii < len(b.Instrs); ii++ {
			in := b.Instrs[ii]
			if in.Op != ir.OpCall {
				continue
			}
			callee := m.NamedFunc(in.Callee)
			if callee == nil || !inlinable(callee) || callee.Name == f.Name {
				continue
			}
			spliced := cloneBody(callee, bi, ii)
			rest := append([]ir.Instr{}, b.Instrs[ii+1:]...)
			b.Instrs = append(append(b.Instrs[:ii], spliced...), rest...)
			statInlinedCalls.Add(1)
			ii += len(spliced) - 1
		}
	}
}

func inlinable(f *ir.Func) bool {
	return f.HasAttr(AttrAlwaysInline) &&
		len(f.Blocks) == 1 &&
		len(f.Params) == 0 &&
		f.Ret.Kind == ir.TypeVoid
}

// cloneBody copies the callee's non-terminator instructions, renaming
// destinations so they cannot collide with values in the caller.
func cloneBody(callee *ir.Func, bi, ii int) []ir.Instr {
	src := callee.Blocks[0].Instrs
	rename := make(map[string]string, len(src))
	out := make([]ir.Instr, 0, len(src))
	for _, in := range src {
		if in.Op.Terminator() {
			continue
		}
		clone := in
		clone.Args = append([]ir.Operand{}, in.Args...)
		for ai, a := range clone.Args {
			if a.Kind == ir.OperandRef {
				if renamed, ok := rename[a.Ref]; ok {
					clone.Args[ai].Ref = renamed
				}
			}
		}
		if clone.Dst != "" {
			renamed := fmt.Sprintf("%s.inl.%d.%d.%s", callee.Name, bi, ii, clone.Dst)
			rename[clone.Dst] = renamed
			clone.Dst = renamed
		}
		out = append(out, clone)
	}
	return out
}

// pruneDeadDeclsPass drops declarations that no instruction calls.
type pruneDeadDeclsPass struct{}

func (*pruneDeadDeclsPass) Name() string { return "prunedecls" }

func (*pruneDeadDeclsPass) Run(m *ir.Module) {
	called := make(map[string]bool)
	for _, f := range m.Funcs {
		for bi := range f.Blocks {
			for _, in := range f.Blocks[bi].Instrs {
				if in.Op == ir.OpCall {
					called[in.Callee] = true
				}
			}
		}
	}
	kept := m.Funcs[:0]
	for _, f := range m.Funcs {
		if f.Declaration() && !called[f.Name] {
			statPrunedDecls.Add(1)
			continue
		}
		kept = append(kept, f)
	}
	m.Funcs = kept
}
