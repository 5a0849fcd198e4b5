// Package ir defines the canonical module representation every pipeline
// stage operates on, together with its textual grammar, binary encoding and
// structural verifier.
package ir

// SourceFormat records which input encoding a module was loaded from.
type SourceFormat uint8

const (
	SourceUnknown SourceFormat = iota
	SourceText
	SourceBinary
	SourceWire
)

// Module is one translation unit.
type Module struct {
	Name         string
	TargetTriple string
	DataLayout   string
	SourceFormat SourceFormat

	SpecConsts []SpecConst
	Globals    []Global
	Funcs      []*Func
}

// SpecConst is a specialization constant slot. Values are substituted by the
// wire-format translator before the module reaches the driver.
type SpecConst struct {
	ID    uint32
	Name  string
	Bits  int
	Value uint64
}

// Global is a module-scoped variable.
type Global struct {
	Name string
	Type Type
}

// Param is a function parameter.
type Param struct {
	Name string
	Type Type
}

// Func is a function definition or, when Blocks is empty, a declaration.
type Func struct {
	Name   string
	Params []Param
	Ret    Type
	Kernel bool
	Attrs  []string
	Blocks []Block
}

// Declaration reports whether f has no body.
func (f *Func) Declaration() bool { return len(f.Blocks) == 0 }

// HasAttr reports whether f carries the named attribute.
func (f *Func) HasAttr(name string) bool {
	for _, a := range f.Attrs {
		if a == name {
			return true
		}
	}
	return false
}

// AddAttr appends the attribute if not already present.
func (f *Func) AddAttr(name string) {
	if !f.HasAttr(name) {
		f.Attrs = append(f.Attrs, name)
	}
}

// RemoveAttr drops the named attribute.
func (f *Func) RemoveAttr(name string) {
	out := f.Attrs[:0]
	for _, a := range f.Attrs {
		if a != name {
			out = append(out, a)
		}
	}
	f.Attrs = out
}

// Block is a labelled instruction sequence. A well-formed block ends with a
// terminator instruction.
type Block struct {
	Label  string
	Instrs []Instr
}

// Terminated reports whether the block ends with a terminator.
func (b *Block) Terminated() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	return b.Instrs[len(b.Instrs)-1].Op.Terminator()
}

// NamedFunc returns the function with the given name, or nil.
func (m *Module) NamedFunc(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// NamedGlobal returns the global with the given name, or nil.
func (m *Module) NamedGlobal(name string) *Global {
	for i := range m.Globals {
		if m.Globals[i].Name == name {
			return &m.Globals[i]
		}
	}
	return nil
}

// Kernels returns the kernel entry points in module order.
func (m *Module) Kernels() []*Func {
	var out []*Func
	for _, f := range m.Funcs {
		if f.Kernel && !f.Declaration() {
			out = append(out, f)
		}
	}
	return out
}

// RemoveFunc deletes the named function, keeping module order.
func (m *Module) RemoveFunc(name string) {
	out := m.Funcs[:0]
	for _, f := range m.Funcs {
		if f.Name != name {
			out = append(out, f)
		}
	}
	m.Funcs = out
}
