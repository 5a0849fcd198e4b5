package driver

import "fmt"

// Default stack surface sizing used when no override is requested.
const (
	defaultStackSurfaceMaxSize     uint32 = 8 * 1024
	defaultStatelessPrivateMemSize uint32 = 16 * 1024
)

// BiFKind indexes the embedded support modules inside BackendData.
type BiFKind uint8

const (
	BiFGeneric BiFKind = iota
	BiFEmulation
	BiFBuiltins
	BiFPrintf
	biFKindCount
)

// BackendOptions is the low-level configuration consumed by the optimize and
// codegen stages. Derived from CompileOptions; recomputed per stage, never
// shared mutable state.
type BackendOptions struct {
	StackSurfaceMaxSize     uint32
	StatelessPrivateMemSize uint32

	EmitDebuggableKernels      bool
	DebuggabilityForLegacyPath bool
	ZeBinCompatibleDWARF       bool
	EmitBreakpoints            bool
	ExtendedDebug              bool

	DisableFinalizerMsg    bool
	EnableAsmDumps         bool
	DisableStructSplitting bool
	ForceArrayPromotion    bool

	DisableLiveRangesCoalescing    bool
	DisableNonOverlappingRegionOpt bool
	LocalizeLRsForAccUsage         bool

	FPFusion           FPOpFusion
	IsLargeGRFMode     bool
	UseBindlessBuffers bool
	UsePlain2DImages   bool
	EnablePreemption   bool

	Dumper          Dumper
	ShaderOverrider ShaderOverrider
}

// BackendData carries the support modules, with the formatted-output module
// selected by pointer width.
type BackendData struct {
	BiFModule [biFKindCount][]byte
}

// buildBackendOptions derives backend options from the resolved
// configuration. A few rules are deliberately not one-to-one copies.
func buildBackendOptions(opts *CompileOptions) BackendOptions {
	bo := BackendOptions{
		StackSurfaceMaxSize:     defaultStackSurfaceMaxSize,
		StatelessPrivateMemSize: defaultStatelessPrivateMemSize,
	}
	if opts.StackMemSize != nil {
		bo.StackSurfaceMaxSize = *opts.StackMemSize
		bo.StatelessPrivateMemSize = *opts.StackMemSize
	}

	bo.EmitDebuggableKernels = opts.EmitDebuggableKernels
	// The legacy debug path is only for runtime kinds other than CM.
	bo.DebuggabilityForLegacyPath = opts.Binary != BinaryCM && opts.EmitDebuggableKernels
	bo.ZeBinCompatibleDWARF = opts.Binary == BinaryZE
	bo.EmitBreakpoints = opts.EmitExtendedDebug

	// Extended debug defaults on at O0 with extended debug requested, but an
	// explicit override wins either way.
	noOptDefault := opts.OptLevel == OptNone && opts.EmitExtendedDebug
	bo.ExtendedDebug = opts.NoOptExtendedDebugMode.Resolve(noOptDefault)

	bo.DisableFinalizerMsg = opts.DisableFinalizerMsg
	bo.EnableAsmDumps = opts.DumpAsm
	bo.Dumper = opts.Dumper
	bo.ShaderOverrider = opts.ShaderOverrider
	bo.DisableStructSplitting = opts.DisableStructSplitting
	bo.ForceArrayPromotion = opts.Binary == BinaryCM

	// One-way latches: a request can only ever turn these on.
	if opts.LocalizeLRsForAccUsage {
		bo.LocalizeLRsForAccUsage = true
	}
	if opts.DisableNonOverlapRegionOpt {
		bo.DisableNonOverlappingRegionOpt = true
	}
	if opts.DisableLRCoalescing {
		bo.DisableLiveRangesCoalescing = true
	}

	bo.FPFusion = opts.FPFusion
	bo.IsLargeGRFMode = opts.IsLargeGRFMode
	bo.UseBindlessBuffers = opts.UseBindlessBuffers
	bo.UsePlain2DImages = opts.UsePlain2DImages
	bo.EnablePreemption = opts.EnablePreemption
	return bo
}

// buildBackendData selects support modules for the target pointer width.
// Pointer widths outside 32 and 64 are a programming fault.
func buildBackendData(ext *ExternalData, pointerSizeInBits int) BackendData {
	if pointerSizeInBits != 32 && pointerSizeInBits != 64 {
		panic(fmt.Sprintf("only 32 and 64 bit pointers are expected, got %d", pointerSizeInBits))
	}
	var bd BackendData
	bd.BiFModule[BiFGeneric] = ext.GenericModule
	bd.BiFModule[BiFEmulation] = ext.EmulationModule
	bd.BiFModule[BiFBuiltins] = ext.BuiltinsModule
	if pointerSizeInBits == 64 {
		bd.BiFModule[BiFPrintf] = ext.Printf64Module
	} else {
		bd.BiFModule[BiFPrintf] = ext.Printf32Module
	}
	return bd
}

// BackendConfig pairs options and data for seeding into pass managers.
type BackendConfig struct {
	Options BackendOptions
	Data    BackendData
}
