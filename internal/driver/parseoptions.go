package driver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"

	"vecc/internal/options"
)

// ParseOptions resolves the two option strings into one CompileOptions.
// The API namespace is parsed strictly when strict is set; the internal
// namespace is always parsed leniently. Resolution is a pure function of its
// inputs and the option tables: identical inputs yield identical results.
func ParseOptions(apiOptions, internalOptions string, strict bool) (*CompileOptions, error) {
	apiArgs, err := parseAPIOptions(apiOptions, strict)
	if err != nil {
		return nil, err
	}
	vcAPIArgs := filterAPIOptions(apiArgs)

	internalArgs, err := parseInternalOptions(internalOptions)
	if err != nil {
		return nil, err
	}
	vcInternalArgs := internalArgs.Filtered(options.VCInternal)

	return fillOptions(vcAPIArgs, vcInternalArgs)
}

// hasExactToken reports a position-independent exact token match. Marker
// detection must never trigger on a token that merely contains the marker.
func hasExactToken(argv []string, tok string) bool {
	for _, a := range argv {
		if a == tok {
			return true
		}
	}
	return false
}

func parseAPIOptions(apiOptions string, strict bool) (*options.ArgList, error) {
	table := options.API()
	argv := options.Tokenize(apiOptions)

	// Grammar selection happens on raw tokens, before any real parsing:
	// with no marker present no parsing should be attempted at all.
	if hasExactToken(argv, table.Lookup("vc-codegen").Spelling) {
		return parseOptionList(table, argv, options.VCApi|options.IGCApi, strict, false)
	}
	igcmc := table.Lookup("igcmc").Spelling
	if hasExactToken(argv, igcmc) {
		warn := color.New(color.FgYellow)
		warn.Fprintf(diagnosticWriter(),
			"'%s' option is deprecated and will be removed in the future release. "+
				"Use -vc-codegen instead.\n", igcmc)
		return parseOptionList(table, argv, options.IgcmcApi|options.IGCApi, strict, false)
	}
	return nil, ErrNotThisCompiler
}

func parseInternalOptions(internalOptions string) (*options.ArgList, error) {
	argv := options.Tokenize(internalOptions)
	// Internal options are never checked strictly.
	return parseOptionList(options.Internal(), argv,
		options.VCInternal|options.IGCInternal, false, true)
}

func parseOptionList(table *options.Table, argv []string, include options.Category,
	strict, isInternal bool) (*options.ArgList, error) {
	list, err := options.ParseArgs(table, argv, include)
	if err != nil {
		var missing *options.MissingValueError
		if errors.As(err, &missing) {
			return nil, &OptionError{Option: missing.Spelling, Internal: isInternal}
		}
		return nil, err
	}
	if strict {
		if unknown := list.Unknown(); len(unknown) > 0 {
			return nil, &OptionError{Option: unknown[0], Internal: isInternal}
		}
		if inputs := list.Inputs(); len(inputs) > 0 {
			return nil, &OptionError{Option: inputs[0], Internal: isInternal}
		}
	}
	return list, nil
}

// filterAPIOptions derives the view of API arguments meaningful to this
// backend. Options shared with the wrapping compiler stay visible in both
// grammar variants; the deprecated grammar otherwise filters by its own
// category.
func filterAPIOptions(apiArgs *options.ArgList) *options.ArgList {
	if apiArgs.Has("igcmc") {
		return apiArgs.Filtered(options.IgcmcApi | options.IGCApi)
	}
	return apiArgs.Filtered(options.VCApi | options.IGCApi)
}

func optionError(a *options.Arg, internal bool) error {
	return &OptionError{Option: a.String(), Internal: internal}
}

func fillAPIOptions(api *options.ArgList, opts *CompileOptions) error {
	if api.Has("no-vector-decomposition") {
		opts.NoVecDecomp = true
	}
	if api.Has("emit-debug") {
		opts.EmitExtendedDebug = true
		opts.EmitDebuggableKernels = true
	}
	if api.Has("fno-struct-splitting") {
		opts.DisableStructSplitting = true
	}
	if api.Has("fno-jump-tables") {
		opts.NoJumpTables = true
	}
	if api.Has("ftranslate-legacy-memory-intrinsics") {
		opts.TranslateLegacyMemoryIntrinsics = true
	}
	if api.Has("disable-finalizer-msg") {
		opts.DisableFinalizerMsg = true
	}
	if api.Has("large-register-file") {
		opts.IsLargeGRFMode = true
	}
	if api.Has("use-plain-2d-images") {
		opts.UsePlain2DImages = true
	}
	if api.Has("enable-preemption") {
		opts.EnablePreemption = true
	}

	if a := api.Last("fp-contract"); a != nil {
		switch a.Value {
		case "on":
			opts.FPFusion = FPFusionStandard
		case "fast":
			opts.FPFusion = FPFusionFast
		case "off":
			opts.FPFusion = FPFusionStrict
		default:
			return optionError(a, false)
		}
	}

	if a := api.Last("optimize", "opt-disable"); a != nil {
		if a.Canon.ID == "optimize" {
			switch a.Value {
			case "none":
				opts.OptLevel = OptNone
			case "full":
				opts.OptLevel = OptFull
			default:
				return optionError(a, false)
			}
		} else {
			opts.OptLevel = OptNone
		}
	}

	if a := api.Last("stateless-private-size"); a != nil {
		// Auto-detected radix.
		wide, err := strconv.ParseUint(a.Value, 0, 64)
		if err != nil {
			return optionError(a, false)
		}
		size, err := safecast.Conv[uint32](wide)
		if err != nil {
			return optionError(a, false)
		}
		opts.StackMemSize = &size
	}

	return nil
}

func fillInternalOptions(internal *options.ArgList, opts *CompileOptions) error {
	if internal.Has("dump-isa-binary") {
		opts.DumpIsa = true
	}
	if internal.Has("dump-llvm-ir") {
		opts.DumpIR = true
	}
	if internal.Has("dump-asm") {
		opts.DumpAsm = true
	}
	if internal.Has("ftime-report") {
		opts.TimePasses = true
	}
	if internal.Has("print-stats") {
		opts.ShowStats = true
	}
	opts.StatsFile = internal.LastValue("stats-file")
	if internal.Has("use-bindless-buffers") {
		opts.UseBindlessBuffers = true
	}
	if internal.Has("disable-lr-coalescing") {
		opts.DisableLRCoalescing = true
	}
	if internal.Has("disable-non-overlapping-region-opt") {
		opts.DisableNonOverlapRegionOpt = true
	}
	if internal.Has("localize-lr-for-acc-usage") {
		opts.LocalizeLRsForAccUsage = true
	}

	if a := internal.Last("binary-format"); a != nil {
		switch a.Value {
		case "cm":
			opts.Binary = BinaryCM
		case "ocl":
			opts.Binary = BinaryOpenCL
		case "ze":
			opts.Binary = BinaryZE
		default:
			return optionError(a, true)
		}
	}

	if a := internal.Last("noopt-extended-debug"); a != nil {
		switch a.Value {
		case "on":
			opts.NoOptExtendedDebugMode = FlagEnable
		case "off":
			opts.NoOptExtendedDebugMode = FlagDisable
		default:
			return optionError(a, true)
		}
	}

	opts.FeaturesString = strings.Join(internal.Values("target-features"), ",")

	if internal.Has("help") {
		options.PrintHelp(diagnosticWriter(), options.API(),
			`-options "-vc-codegen [options]"`,
			"Vector compiler options", options.VCApi)
	}
	if internal.Has("help-internal") {
		options.PrintHelp(diagnosticWriter(), options.Internal(),
			`-options "-vc-codegen" -internal_options "[options]"`,
			"Vector compiler internal options", options.VCInternal)
	}

	return nil
}

// composeLLVMArgs builds the auxiliary low-level pass option string from raw
// passthrough values plus synthesized fragments for compatibility flags.
func composeLLVMArgs(api, internal *options.ArgList) string {
	var sb strings.Builder

	if vals := internal.Values("llvm-options"); len(vals) > 0 {
		sb.WriteString(strings.Join(vals, " "))
	}

	for _, id := range []string{"visaopts", "Xfinalizer"} {
		if !api.Has(id) {
			continue
		}
		sb.WriteString(" -finalizer-opts='")
		sb.WriteString(strings.Join(api.Values(id), " "))
		sb.WriteString("'")
	}

	if api.Has("gtpin-rera") {
		sb.WriteString(" -finalizer-opts='-GTPinReRA'")
	}
	if api.Has("gtpin-grf-info") {
		sb.WriteString(" -finalizer-opts='-getfreegrfinfo -rerapostschedule'")
	}
	if a := api.Last("gtpin-scratch-area-size"); a != nil {
		fmt.Fprintf(&sb, " -finalizer-opts='-GTPinScratchAreaSize %s'", a.Value)
	}

	return sb.String()
}

func fillOptions(api, internal *options.ArgList) (*CompileOptions, error) {
	opts := &CompileOptions{
		OptLevel: OptFull,
		Binary:   BinaryOpenCL,
		FPFusion: FPFusionStandard,
	}
	if err := fillAPIOptions(api, opts); err != nil {
		return nil, err
	}
	if err := fillInternalOptions(internal, opts); err != nil {
		return nil, err
	}
	opts.LLVMOptions = composeLLVMArgs(api, internal)
	return opts, nil
}
