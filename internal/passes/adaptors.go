package passes

import "vecc/internal/ir"

// Attributes produced by the wire-format reader and consumed here.
const (
	attrWireKernel = "wire_kernel"
	attrReadNone   = "readnone"
	attrNoUnwind   = "nounwind"
)

// intrinsicPrefix marks declarations of backend intrinsics.
const intrinsicPrefix = "vx."

// WireReaderAdaptor rewrites reader artifacts of wire-translated modules into
// canonical form: the reader marks kernels with an attribute instead of the
// kernel flag. Modules from other sources pass through untouched.
type WireReaderAdaptor struct{}

func (*WireReaderAdaptor) Name() string { return "wire-reader-adaptor" }

func (*WireReaderAdaptor) Run(m *ir.Module) {
	if m.SourceFormat != ir.SourceWire {
		return
	}
	for _, f := range m.Funcs {
		if f.HasAttr(attrWireKernel) {
			f.Kernel = true
			f.RemoveAttr(attrWireKernel)
		}
	}
}

// RestoreIntrinsicAttrs reattaches the canonical attribute set to intrinsic
// declarations. Serializers are allowed to drop these attributes, and later
// passes rely on them being present.
type RestoreIntrinsicAttrs struct{}

func (*RestoreIntrinsicAttrs) Name() string { return "restore-intrinsic-attrs" }

func (*RestoreIntrinsicAttrs) Run(m *ir.Module) {
	for _, f := range m.Funcs {
		if !f.Declaration() || len(f.Name) <= len(intrinsicPrefix) {
			continue
		}
		if f.Name[:len(intrinsicPrefix)] != intrinsicPrefix {
			continue
		}
		f.AddAttr(attrNoUnwind)
		if !intrinsicWritesMemory(f.Name) {
			f.AddAttr(attrReadNone)
		}
	}
}

func intrinsicWritesMemory(name string) bool {
	switch name {
	case "vx.printf", "vx.scatter", "vx.media.store", "vx.fence":
		return true
	}
	return false
}
