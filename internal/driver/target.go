package driver

import (
	"vecc/internal/target"
)

// subtargetFeatures assembles the feature string from the auxiliary feature
// list and the active capability toggles.
func subtargetFeatures(opts *CompileOptions) string {
	var fs target.FeatureSet
	fs.AddList(opts.FeaturesString)

	if opts.HasL1ReadOnlyCache {
		fs.Add("has_l1_read_only_cache", true)
	}
	if opts.HasLocalMemFenceSuppress {
		fs.Add("supress_local_mem_fence", true)
	}
	if opts.NoVecDecomp {
		fs.Add("disable_vec_decomp", true)
	}
	if opts.NoJumpTables {
		fs.Add("disable_jump_tables", true)
	}
	if opts.TranslateLegacyMemoryIntrinsics {
		fs.Add("translate_legacy_message", true)
	}
	if opts.Binary.RegisteredRuntime() {
		fs.Add("ocl_runtime", true)
	}
	return fs.String()
}

func codeGenOptLevel(opts *CompileOptions) target.OptLevel {
	if opts.OptLevel == OptNone {
		return target.OptNone
	}
	return target.OptDefault
}

// newTargetMachine constructs the machine for a normalized triple. The
// registry must already be primed; a missing registration is a broken build
// and panics inside the lookup path.
func newTargetMachine(opts *CompileOptions, triple string) (*target.Machine, error) {
	tgt := target.Lookup(target.ArchName(triple))
	if tgt == nil {
		panic("vector target was not registered")
	}
	tm, err := tgt.CreateMachine(target.Config{
		Triple:   triple,
		CPU:      opts.CPU,
		Features: subtargetFeatures(opts),
		OptLevel: codeGenOptLevel(opts),
	})
	if err != nil {
		return nil, &TargetMachineError{Triple: triple, Msg: err.Error()}
	}
	return tm, nil
}
