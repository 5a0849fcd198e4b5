package driver

import (
	"fmt"
	"os"

	"vecc/internal/ir"
	"vecc/internal/options"
	"vecc/internal/passes"
	"vecc/internal/target"
)

// Compile runs the whole pipeline over one input module: load, adaptor
// passes, target configuration, optimization, code generation. The sequence
// is strictly single-pass: any failure short-circuits with that error.
//
// The low-level pipeline keeps process-wide option state, so invocations are
// serialized; the guard acquired here parses opts.LLVMOptions into that state
// and guarantees it is reset on every exit path.
func Compile(input []byte, ftype FileType, opts *CompileOptions, ext *ExternalData,
	specConstIDs []uint32, specConstValues []uint64) (CompileOutput, error) {
	if len(specConstIDs) != len(specConstValues) {
		return nil, fmt.Errorf("spec constant ids and values differ in length: %d vs %d",
			len(specConstIDs), len(specConstValues))
	}

	guard := passes.Acquire(options.Tokenize(opts.LLVMOptions))
	defer guard.Release()

	target.RegisterGenX()

	m, err := loadModule(input, ftype, specConstIDs, specConstValues)
	if err != nil {
		return nil, err
	}

	dumpModule(opts, m, "after_reader.vir")

	adaptors := passes.NewManager("adaptors")
	adaptors.Add(&passes.WireReaderAdaptor{})
	adaptors.Add(&passes.RestoreIntrinsicAttrs{})
	adaptors.Run(m)

	dumpModule(opts, m, "after_adaptors.vir")

	triple := target.NormalizeTriple(m.TargetTriple)
	m.TargetTriple = triple

	tm, err := newTargetMachine(opts, triple)
	if err != nil {
		return nil, err
	}
	m.DataLayout = tm.DataLayout()

	if opts.TimePasses {
		passes.TimePassesEnabled = true
	}
	if opts.ShowStats || opts.StatsFile != "" {
		passes.EnableStatistics()
	}

	dumpModule(opts, m, "before_passes.vir")

	optimizeIR(opts, ext, tm, m)

	dumpModule(opts, m, "optimized.vir")

	output := runCodeGen(opts, ext, tm, m)

	passes.PrintTimers(diagnosticWriter())
	if opts.ShowStats {
		passes.PrintStatistics(diagnosticWriter())
	}
	if opts.StatsFile != "" {
		writeStatsFile(opts.StatsFile)
	}
	return output, nil
}

func dumpModule(opts *CompileOptions, m *ir.Module, name string) {
	if opts.DumpIR && opts.Dumper != nil {
		opts.Dumper.DumpModule(m, name)
	}
}

// writeStatsFile writes JSON statistics. A write failure is reported to the
// diagnostic stream and never fails the compile.
func writeStatsFile(path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(diagnosticWriter(), "%s: %v\n", path, err)
		return
	}
	defer f.Close()
	if err := passes.PrintStatisticsJSON(f); err != nil {
		fmt.Fprintf(diagnosticWriter(), "%s: %v\n", path, err)
	}
}
