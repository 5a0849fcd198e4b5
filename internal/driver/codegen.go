package driver

import (
	"bytes"
	"io"

	"vecc/internal/ir"
	"vecc/internal/kernelinfo"
	"vecc/internal/passes"
	"vecc/internal/target"
)

// populateCodeGenPassManager seeds the codegen pipeline and delegates to the
// machine's own emission pipeline, requesting assembly output. The machine
// refusing the file type means the build is broken, not that the input is.
func populateCodeGenPassManager(opts *CompileOptions, ext *ExternalData,
	tm *target.Machine, w io.Writer, pm *passes.Manager) {
	pm.AddConfig(passes.ConfigTargetLibinfo, tm.TargetTriple())
	pm.AddConfig(passes.ConfigBackend, &BackendConfig{
		Options: buildBackendOptions(opts),
		Data:    buildBackendData(ext, tm.PointerSizeInBits()),
	})
	if tm.AddEmitPasses(pm, w, target.FileAssembly) {
		panic("bad file type for vector codegen")
	}
}

// runtimeInfoPass harvests the structured per-kernel metadata bundle during
// the codegen run.
type runtimeInfoPass struct {
	opts    *CompileOptions
	machine *target.Machine
	out     *RuntimeOutput
}

func (*runtimeInfoPass) Name() string { return "runtime-info" }

func (p *runtimeInfoPass) Run(m *ir.Module) {
	for _, f := range m.Kernels() {
		payload := p.machine.KernelBinary(f)
		if p.opts.ShaderOverrider != nil {
			if replaced, ok := p.opts.ShaderOverrider.Override(f.Name, payload); ok {
				payload = replaced
			}
		}
		p.out.Kernels = append(p.out.Kernels, KernelResult{
			Name:   f.Name,
			Info:   collectKernelInfo(p.opts, f),
			Binary: payload,
		})
	}
}

// collectKernelInfo builds the per-variable debug records of one kernel.
func collectKernelInfo(opts *CompileOptions, f *ir.Func) *kernelinfo.KernelInfo {
	info := kernelinfo.New()
	key := 0
	record := func(t ir.Type, access kernelinfo.MemAccess, isConst bool) {
		info.Put(key, &kernelinfo.VarInfo{
			SrcFilename:  f.Name,
			Size:         t.SizeInBytes(),
			Type:         int16(t.Kind),
			AddrModel:    kernelinfo.AddrLocal,
			MemoryAccess: access,
			Uniform:      t.Scalar(),
			Const:        isConst,
		})
		key++
	}
	for _, param := range f.Params {
		record(param.Type, kernelinfo.AccessNone, false)
	}
	memAccess := kernelinfo.AccessStateless
	if opts.UseBindlessBuffers {
		memAccess = kernelinfo.AccessStateful
	}
	for bi := range f.Blocks {
		for _, in := range f.Blocks[bi].Instrs {
			if in.Dst == "" {
				continue
			}
			access := kernelinfo.AccessNone
			if in.Op == ir.OpLoad || in.Op == ir.OpStore {
				access = memAccess
			}
			isConst := in.Op == ir.OpMov && len(in.Args) == 1 && in.Args[0].Constant()
			record(in.Type, access, isConst)
		}
	}
	return info
}

// dumpFinalOutput feeds the final snapshots to the dump hook.
func dumpFinalOutput(opts *CompileOptions, m *ir.Module, isaBinary []byte) {
	if opts.DumpIR && opts.Dumper != nil {
		opts.Dumper.DumpModule(m, "final.vir")
	}
	if opts.DumpIsa && opts.Dumper != nil {
		opts.Dumper.DumpBinary(isaBinary, "final.isa")
	}
}

// runRuntimeCodeGen is the registered-runtime path: assembly goes to a
// discard sink unless dumps were requested, and the result is the harvested
// metadata bundle.
func runRuntimeCodeGen(opts *CompileOptions, ext *ExternalData,
	tm *target.Machine, m *ir.Module) *RuntimeOutput {
	pm := passes.NewManager("codegen")

	var isaBinary bytes.Buffer
	if opts.DumpIsa {
		populateCodeGenPassManager(opts, ext, tm, &isaBinary, pm)
	} else {
		populateCodeGenPassManager(opts, ext, tm, io.Discard, pm)
	}

	out := &RuntimeOutput{}
	pm.Add(&runtimeInfoPass{opts: opts, machine: tm, out: out})

	pm.Run(m)
	dumpFinalOutput(opts, m, isaBinary.Bytes())
	return out
}

// runCmCodeGen is the flat-binary path: assembly is always captured and
// wrapped as the output.
func runCmCodeGen(opts *CompileOptions, ext *ExternalData,
	tm *target.Machine, m *ir.Module) *FlatOutput {
	pm := passes.NewManager("codegen")

	var isaBinary bytes.Buffer
	populateCodeGenPassManager(opts, ext, tm, &isaBinary, pm)
	pm.Run(m)
	dumpFinalOutput(opts, m, isaBinary.Bytes())
	return &FlatOutput{Binary: isaBinary.Bytes()}
}

// runCodeGen dispatches on the output binary kind.
func runCodeGen(opts *CompileOptions, ext *ExternalData,
	tm *target.Machine, m *ir.Module) CompileOutput {
	switch opts.Binary {
	case BinaryCM:
		return runCmCodeGen(opts, ext, tm, m)
	case BinaryOpenCL, BinaryZE:
		return runRuntimeCodeGen(opts, ext, tm, m)
	}
	panic("unknown runtime kind")
}
