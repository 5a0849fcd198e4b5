package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"vecc/internal/driver"
	"vecc/internal/ir"
	"vecc/internal/kernelinfo"
	"vecc/internal/observ"
	"vecc/internal/wirefmt"
)

var (
	compileFormat     string
	compileAPIOpts    string
	compileIntOpts    string
	compileStrict     bool
	compileSpecConsts []string
	compileOutput     string
	compileSupportDir string
	compileDumpDir    string
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <input>...",
	Short: "Compile vector kernel modules",
	Long:  "Compile one or more vector kernel modules to machine ISA.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  compileExecution,
}

func init() {
	compileCmd.Flags().StringVar(&compileFormat, "format", "auto", "input format (auto|text|bin|wire)")
	compileCmd.Flags().StringVar(&compileAPIOpts, "options", "", "api options string")
	compileCmd.Flags().StringVar(&compileIntOpts, "internal-options", "", "internal options string")
	compileCmd.Flags().BoolVar(&compileStrict, "strict", false, "reject unknown api options")
	compileCmd.Flags().StringArrayVar(&compileSpecConsts, "spec-const", nil, "specialization constant id=value (repeatable)")
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output path (single input only)")
	compileCmd.Flags().StringVar(&compileSupportDir, "support-dir", "", "directory with support modules (*.vbc)")
	compileCmd.Flags().StringVar(&compileDumpDir, "dump-dir", "", "write pipeline dumps into this directory")
}

func compileExecution(cmd *cobra.Command, args []string) error {
	if compileOutput != "" && len(args) > 1 {
		return fmt.Errorf("-o is only valid with a single input")
	}

	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	specIDs, specVals, err := parseSpecConsts(compileSpecConsts)
	if err != nil {
		return err
	}

	opts, err := driver.ParseOptions(compileAPIOpts, compileIntOpts, compileStrict)
	if err != nil {
		return err
	}
	if compileDumpDir != "" {
		if err := os.MkdirAll(compileDumpDir, 0o755); err != nil {
			return err
		}
	}

	ext, err := loadSupportModules(compileSupportDir)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	g := new(errgroup.Group)
	// The driver serializes invocations internally, so the concurrency here
	// only overlaps file IO with compilation.
	g.SetLimit(4)
	for _, input := range args {
		input := input
		g.Go(func() error {
			return compileOne(input, opts, ext, specIDs, specVals, timer, quiet)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if timings {
		fmt.Fprint(cmd.OutOrStdout(), timer.Summary())
	}
	return nil
}

func compileOne(input string, opts *driver.CompileOptions, ext *driver.ExternalData,
	specIDs []uint32, specVals []uint64, timer *observ.Timer, quiet bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	ftype, err := detectFileType(compileFormat, data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	perInput := *opts
	if compileDumpDir != "" {
		perInput.Dumper = &dirDumper{dir: compileDumpDir, prefix: baseName(input)}
	}

	phase := timer.Begin(baseName(input))
	out, err := driver.Compile(data, ftype, &perInput, ext, specIDs, specVals)
	if err != nil {
		timer.End(phase, "failed")
		return fmt.Errorf("%s: %w", input, err)
	}
	timer.End(phase, "")

	outPath := outputPath(input, out)
	if err := writeOutput(outPath, out); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("compiled %s -> %s\n", input, outPath)
	}
	return nil
}

// detectFileType resolves the --format flag, sniffing magic bytes in auto
// mode. Wire containers and binary modules are distinguished by their leading
// magic; everything else is treated as text.
func detectFileType(format string, data []byte) (driver.FileType, error) {
	switch format {
	case "text":
		return driver.FileText, nil
	case "bin":
		return driver.FileBinary, nil
	case "wire":
		return driver.FileWire, nil
	case "auto":
		if wirefmt.HasMagic(data) {
			return driver.FileWire, nil
		}
		if ir.HasBinaryMagic(data) {
			return driver.FileBinary, nil
		}
		return driver.FileText, nil
	}
	return 0, fmt.Errorf("unsupported format %q (must be auto, text, bin or wire)", format)
}

func parseSpecConsts(pairs []string) ([]uint32, []uint64, error) {
	if len(pairs) == 0 {
		return nil, nil, nil
	}
	ids := make([]uint32, 0, len(pairs))
	vals := make([]uint64, 0, len(pairs))
	for _, p := range pairs {
		id, val, ok := strings.Cut(p, "=")
		if !ok {
			return nil, nil, fmt.Errorf("malformed spec constant %q (want id=value)", p)
		}
		idNum, err := strconv.ParseUint(id, 0, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("malformed spec constant id %q: %w", id, err)
		}
		valNum, err := strconv.ParseUint(val, 0, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("malformed spec constant value %q: %w", val, err)
		}
		ids = append(ids, uint32(idNum))
		vals = append(vals, valNum)
	}
	return ids, vals, nil
}

// Support module filenames looked for under --support-dir. Missing files are
// fine; the corresponding module stays empty.
var supportModuleFiles = []struct {
	name string
	dst  func(*driver.ExternalData) *[]byte
}{
	{"generic.vbc", func(e *driver.ExternalData) *[]byte { return &e.GenericModule }},
	{"emulation.vbc", func(e *driver.ExternalData) *[]byte { return &e.EmulationModule }},
	{"builtins.vbc", func(e *driver.ExternalData) *[]byte { return &e.BuiltinsModule }},
	{"printf32.vbc", func(e *driver.ExternalData) *[]byte { return &e.Printf32Module }},
	{"printf64.vbc", func(e *driver.ExternalData) *[]byte { return &e.Printf64Module }},
}

func loadSupportModules(dir string) (*driver.ExternalData, error) {
	ext := &driver.ExternalData{}
	if dir == "" {
		return ext, nil
	}
	for _, f := range supportModuleFiles {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		*f.dst(ext) = data
	}
	return ext, nil
}

func outputPath(input string, out driver.CompileOutput) string {
	if compileOutput != "" {
		return compileOutput
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	switch out.(type) {
	case *driver.FlatOutput:
		return base + ".isa"
	default:
		return base + ".vout"
	}
}

// kernelRecord is the serialized form of one compiled kernel.
type kernelRecord struct {
	Name   string      `msgpack:"name"`
	Binary []byte      `msgpack:"binary"`
	Vars   []varRecord `msgpack:"vars"`
}

type varRecord struct {
	Key          int    `msgpack:"key"`
	Size         int    `msgpack:"size"`
	AddrModel    string `msgpack:"addr_model"`
	MemoryAccess string `msgpack:"memory_access"`
	Uniform      bool   `msgpack:"uniform"`
	Const        bool   `msgpack:"const"`
}

func writeOutput(path string, out driver.CompileOutput) error {
	switch o := out.(type) {
	case *driver.FlatOutput:
		return os.WriteFile(path, o.Binary, 0o644)
	case *driver.RuntimeOutput:
		records := make([]kernelRecord, 0, len(o.Kernels))
		for _, k := range o.Kernels {
			records = append(records, kernelRecord{
				Name:   k.Name,
				Binary: k.Binary,
				Vars:   varRecords(k.Info),
			})
		}
		data, err := msgpack.Marshal(records)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	return fmt.Errorf("unexpected compile output %T", out)
}

func varRecords(info *kernelinfo.KernelInfo) []varRecord {
	if info == nil {
		return nil
	}
	records := make([]varRecord, 0, info.Len())
	info.Each(func(key int, v *kernelinfo.VarInfo) {
		records = append(records, varRecord{
			Key:          key,
			Size:         v.Size,
			AddrModel:    v.AddrModel.String(),
			MemoryAccess: v.MemoryAccess.String(),
			Uniform:      v.Uniform,
			Const:        v.Const,
		})
	})
	return records
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// dirDumper writes pipeline snapshots into a directory, prefixed with the
// input name so batch runs do not overwrite each other.
type dirDumper struct {
	dir    string
	prefix string
}

func (d *dirDumper) DumpModule(m *ir.Module, name string) {
	d.DumpBinary([]byte(ir.String(m)), name)
}

func (d *dirDumper) DumpBinary(data []byte, name string) {
	path := filepath.Join(d.dir, d.prefix+"."+name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "dump %s: %v\n", path, err)
	}
}
