package ir

import (
	"errors"
	"fmt"
)

// Verify checks module structural invariants. It returns an aggregate error
// describing every violation found, or nil for a well-formed module.
// Verification is independent of how the module was obtained: the same checks
// run after a text parse and after a binary decode.
func Verify(m *Module) error {
	if m == nil {
		return errors.New("nil module")
	}
	var errs []error
	seenFuncs := make(map[string]bool, len(m.Funcs))
	for _, f := range m.Funcs {
		if seenFuncs[f.Name] {
			errs = append(errs, fmt.Errorf("duplicate function @%s", f.Name))
			continue
		}
		seenFuncs[f.Name] = true
	}
	seenGlobals := make(map[string]bool, len(m.Globals))
	for _, g := range m.Globals {
		if seenGlobals[g.Name] {
			errs = append(errs, fmt.Errorf("duplicate global @%s", g.Name))
		}
		seenGlobals[g.Name] = true
	}
	for _, f := range m.Funcs {
		if f.Declaration() {
			continue
		}
		if err := verifyFunc(m, f); err != nil {
			errs = append(errs, fmt.Errorf("function @%s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func verifyFunc(m *Module, f *Func) error {
	var errs []error

	labels := make(map[string]bool, len(f.Blocks))
	for i := range f.Blocks {
		b := &f.Blocks[i]
		if b.Label == "" {
			errs = append(errs, errors.New("block with empty label"))
			continue
		}
		if labels[b.Label] {
			errs = append(errs, fmt.Errorf("duplicate block label %q", b.Label))
		}
		labels[b.Label] = true
	}

	defined := make(map[string]bool, 8)
	for _, p := range f.Params {
		defined[p.Name] = true
	}
	for i := range f.Blocks {
		for _, in := range f.Blocks[i].Instrs {
			if in.Dst != "" {
				defined[in.Dst] = true
			}
		}
	}

	for i := range f.Blocks {
		b := &f.Blocks[i]
		if !b.Terminated() {
			errs = append(errs, fmt.Errorf("block %q is not terminated", b.Label))
		}
		for idx, in := range b.Instrs {
			if in.Op.Terminator() && idx != len(b.Instrs)-1 {
				errs = append(errs, fmt.Errorf("terminator in the middle of block %q", b.Label))
			}
			for _, l := range in.Labels {
				if !labels[l] {
					errs = append(errs, fmt.Errorf("branch to unknown label %q", l))
				}
			}
			for _, a := range in.Args {
				switch a.Kind {
				case OperandRef:
					if !defined[a.Ref] {
						errs = append(errs, fmt.Errorf("use of undefined value %%%s", a.Ref))
					}
				case OperandGlobal:
					if m.NamedGlobal(a.Ref) == nil {
						errs = append(errs, fmt.Errorf("use of undefined global @%s", a.Ref))
					}
				}
			}
			if in.Op == OpCall {
				callee := m.NamedFunc(in.Callee)
				if callee == nil {
					errs = append(errs, fmt.Errorf("call to undefined function @%s", in.Callee))
				} else if len(in.Args) != len(callee.Params) {
					errs = append(errs, fmt.Errorf("call to @%s with %d arguments, want %d",
						in.Callee, len(in.Args), len(callee.Params)))
				}
			}
			if !in.Op.Terminator() && in.Op != OpStore && in.Op != OpCall && in.Dst == "" {
				errs = append(errs, fmt.Errorf("%s without destination in block %q", in.Op, b.Label))
			}
		}
	}
	return errors.Join(errs...)
}
