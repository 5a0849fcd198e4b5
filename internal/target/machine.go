package target

import (
	"fmt"
	"io"

	"vecc/internal/passes"
)

// OptLevel is the code generation optimization level.
type OptLevel uint8

const (
	OptNone OptLevel = iota
	OptDefault
)

// FileType selects the emission output format.
type FileType uint8

const (
	FileAssembly FileType = iota
	FileObject
)

// Config parameterizes machine construction.
type Config struct {
	Triple   string
	CPU      string
	Features string
	OptLevel OptLevel
}

// Machine is the constructed, triple-and-feature-specific code emitter.
type Machine struct {
	target   *Target
	triple   string
	cpu      string
	features map[string]bool
	featStr  string
	level    OptLevel
}

// CreateMachine constructs a machine for a registered target. The caller is
// responsible for having primed the registry; a nil target here is a broken
// build. Construction itself fails only on a malformed configuration.
func (t *Target) CreateMachine(cfg Config) (*Machine, error) {
	if t == nil {
		panic("target machine requested for an unregistered target")
	}
	if ArchName(cfg.Triple) != t.Arch {
		return nil, fmt.Errorf("triple %q does not name target %q", cfg.Triple, t.Arch)
	}
	return &Machine{
		target:   t,
		triple:   cfg.Triple,
		cpu:      cfg.CPU,
		features: parseFeatures(cfg.Features),
		featStr:  cfg.Features,
		level:    cfg.OptLevel,
	}, nil
}

// TargetTriple returns the canonical triple the machine was built for.
func (m *Machine) TargetTriple() string { return m.triple }

// PointerSizeInBits returns the machine pointer width.
func (m *Machine) PointerSizeInBits() int { return m.target.PointerSize }

// HasFeature reports whether the named subtarget feature is enabled.
func (m *Machine) HasFeature(name string) bool { return m.features[name] }

// DataLayout returns the data layout string modules compiled for this
// machine must carry.
func (m *Machine) DataLayout() string {
	p := m.target.PointerSize
	return fmt.Sprintf("e-p:%d:%d-i64:64-v128:128", p, p)
}

// AdjustBuilder applies target-specific pipeline builder tweaks.
func (m *Machine) AdjustBuilder(b *passes.Builder) {
	// The vector ISA has no scalar SLP/loop vectorizer to speak of.
	b.SLPVectorize = false
	b.LoopVectorize = false
}

// AddEmitPasses appends the machine's code-emission pipeline to pm, writing
// to w. It returns true when it cannot emit the requested file type, which
// callers treat as an internal fault rather than a recoverable error.
func (m *Machine) AddEmitPasses(pm *passes.Manager, w io.Writer, ft FileType) bool {
	if ft != FileAssembly {
		return true
	}
	pm.Add(&emitPass{machine: m, w: w})
	return false
}
