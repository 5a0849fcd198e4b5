// Package driver orchestrates one compilation: option resolution, module
// loading, target configuration, the optimize and codegen stages, and the
// scoped handling of process-wide pipeline state.
package driver

import (
	"io"
	"os"
	"sync"

	"vecc/internal/ir"
)

// FileType tags the input encoding.
type FileType uint8

const (
	// FileWire is the portable wire encoding, translated to the binary
	// module form before any other processing.
	FileWire FileType = iota
	// FileText is the textual module grammar.
	FileText
	// FileBinary is the native binary module encoding.
	FileBinary
)

// BinaryKind is the output binary kind. OpenCL and ZE are the registered
// runtime kinds: their codegen path harvests structured per-kernel metadata,
// while CM produces a flat payload.
type BinaryKind uint8

const (
	BinaryCM BinaryKind = iota
	BinaryOpenCL
	BinaryZE
)

func (b BinaryKind) String() string {
	switch b {
	case BinaryCM:
		return "cm"
	case BinaryOpenCL:
		return "ocl"
	case BinaryZE:
		return "ze"
	}
	return "unknown"
}

// RegisteredRuntime reports whether the kind uses the runtime-info path.
func (b BinaryKind) RegisteredRuntime() bool {
	return b == BinaryOpenCL || b == BinaryZE
}

// OptimizerLevel selects the middle-end effort.
type OptimizerLevel uint8

const (
	OptFull OptimizerLevel = iota
	OptNone
)

// FPOpFusion is the floating-point fusion mode.
type FPOpFusion uint8

const (
	FPFusionStandard FPOpFusion = iota
	FPFusionFast
	FPFusionStrict
)

// OverridableFlag is a tri-state: follow the computed default, or force a
// value either way.
type OverridableFlag uint8

const (
	FlagDefault OverridableFlag = iota
	FlagEnable
	FlagDisable
)

// Resolve collapses the tri-state against a default.
func (f OverridableFlag) Resolve(def bool) bool {
	switch f {
	case FlagEnable:
		return true
	case FlagDisable:
		return false
	}
	return def
}

// Dumper receives named diagnostic snapshots at fixed pipeline points.
type Dumper interface {
	DumpModule(m *ir.Module, name string)
	DumpBinary(data []byte, name string)
}

// ShaderOverrider lets tooling substitute a kernel's compiled payload.
type ShaderOverrider interface {
	Override(kernel string, payload []byte) ([]byte, bool)
}

// CompileOptions is the fully resolved flat configuration of one invocation.
// Built once by ParseOptions, immutable afterwards.
type CompileOptions struct {
	OptLevel OptimizerLevel
	Binary   BinaryKind
	FPFusion FPOpFusion
	CPU      string

	// Capability toggles set by the embedding runtime rather than by an
	// option spelling.
	HasL1ReadOnlyCache       bool
	HasLocalMemFenceSuppress bool

	NoVecDecomp                     bool
	NoJumpTables                    bool
	TranslateLegacyMemoryIntrinsics bool
	DisableStructSplitting          bool
	EmitExtendedDebug               bool
	EmitDebuggableKernels           bool
	DisableFinalizerMsg             bool
	IsLargeGRFMode                  bool
	UseBindlessBuffers              bool
	UsePlain2DImages                bool
	EnablePreemption                bool

	NoOptExtendedDebugMode     OverridableFlag
	DisableLRCoalescing        bool
	DisableNonOverlapRegionOpt bool
	LocalizeLRsForAccUsage     bool

	// StackMemSize overrides the stateless private memory size when non-nil.
	StackMemSize *uint32

	FeaturesString string
	LLVMOptions    string

	DumpIR  bool
	DumpIsa bool
	DumpAsm bool

	TimePasses bool
	ShowStats  bool
	StatsFile  string

	Dumper          Dumper
	ShaderOverrider ShaderOverrider
}

// ExternalData bundles the embedded support modules supplied by the caller
// and borrowed for the duration of one invocation.
type ExternalData struct {
	GenericModule   []byte
	EmulationModule []byte
	BuiltinsModule  []byte
	Printf32Module  []byte
	Printf64Module  []byte
}

// Diagnostic stream. Deprecation notices, help text and statistics-write
// failures go here; tests redirect it.
var (
	diagMu sync.Mutex
	diagW  io.Writer = os.Stderr
)

// SetDiagnosticWriter redirects the diagnostic stream and returns the
// previous writer.
func SetDiagnosticWriter(w io.Writer) io.Writer {
	diagMu.Lock()
	defer diagMu.Unlock()
	prev := diagW
	diagW = w
	return prev
}

func diagnosticWriter() io.Writer {
	diagMu.Lock()
	defer diagMu.Unlock()
	return diagW
}
