package driver

import (
	"vecc/internal/ir"
	"vecc/internal/passes"
	"vecc/internal/target"
)

// optimizeIR runs the transformation pipeline: a per-function sequence over
// every function with a body, then a per-module sequence. It always runs;
// even at optimization level none the seeded target-information and
// backend-configuration registrations must happen.
func optimizeIR(opts *CompileOptions, ext *ExternalData, tm *target.Machine, m *ir.Module) {
	perModule := passes.NewManager("module-opt")
	perFunction := passes.NewFuncManager("func-opt")

	cfg := &BackendConfig{
		Options: buildBackendOptions(opts),
		Data:    buildBackendData(ext, tm.PointerSizeInBits()),
	}
	perModule.AddConfig(passes.ConfigTargetInfo, tm)
	perModule.AddConfig(passes.ConfigBackend, cfg)
	perFunction.AddConfig(passes.ConfigTargetInfo, tm)
	perFunction.AddConfig(passes.ConfigBackend, cfg)

	level := 2
	if opts.OptLevel == OptNone {
		level = 0
	}
	builder := passes.Builder{
		OptLevel:           level,
		SizeLevel:          level,
		Inliner:            true,
		SLPVectorize:       false,
		LoopVectorize:      false,
		DisableUnrollLoops: false,
		MergeFunctions:     false,
		RerollLoops:        true,
	}
	tm.AdjustBuilder(&builder)

	builder.PopulateFunc(perFunction)
	builder.PopulateModule(perModule)

	for _, f := range m.Funcs {
		if !f.Declaration() {
			perFunction.Run(f, m)
		}
	}
	perModule.Run(m)
}
