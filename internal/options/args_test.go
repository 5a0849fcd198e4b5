package options_test

import (
	"errors"
	"testing"

	"vecc/internal/options"
)

func TestParseArgs_Kinds(t *testing.T) {
	table := options.API()
	argv := []string{"-vc-codegen", "-vc-optimize=none", "-Xfinalizer", "-nocompaction"}
	list, err := options.ParseArgs(table, argv, options.VCApi|options.IGCApi)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !list.Has("vc-codegen") {
		t.Error("flag occurrence not recorded")
	}
	if got := list.LastValue("optimize"); got != "none" {
		t.Errorf("joined value = %q, want %q", got, "none")
	}
	if got := list.Values("Xfinalizer"); len(got) != 1 || got[0] != "-nocompaction" {
		t.Errorf("separate value = %#v", got)
	}
}

func TestParseArgs_MissingSeparateValue(t *testing.T) {
	table := options.API()
	_, err := options.ParseArgs(table, []string{"-vc-codegen", "-Xfinalizer"}, options.VCApi)
	var missing *options.MissingValueError
	if !errors.As(err, &missing) {
		t.Fatalf("ParseArgs = %v, want MissingValueError", err)
	}
	if missing.Spelling != "-Xfinalizer" {
		t.Errorf("Spelling = %q", missing.Spelling)
	}
}

func TestParseArgs_UnknownAndInputs(t *testing.T) {
	table := options.API()
	argv := []string{"-vc-codegen", "-mystery-flag", "kernel.vir"}
	list, err := options.ParseArgs(table, argv, options.VCApi|options.IGCApi)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if got := list.Unknown(); len(got) != 1 || got[0] != "-mystery-flag" {
		t.Errorf("Unknown = %#v", got)
	}
	if got := list.Inputs(); len(got) != 1 || got[0] != "kernel.vir" {
		t.Errorf("Inputs = %#v", got)
	}
}

func TestParseArgs_OutOfCategoryRendersAsWritten(t *testing.T) {
	table := options.Internal()
	list, err := options.ParseArgs(table, []string{"-binary-format=zx"}, 0)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if got := list.Unknown(); len(got) != 1 || got[0] != "-binary-format=zx" {
		t.Errorf("Unknown = %#v, want the spelled form with its value", got)
	}
}

func TestParseArgs_AliasResolvesBeforeFiltering(t *testing.T) {
	table := options.API()
	// The legacy underscore spelling is igcmc-only, but its canonical option
	// participates in the current grammar, so the canonical categories decide
	// filtering.
	list, err := options.ParseArgs(table, []string{"-no_vector_decomposition"}, options.IgcmcApi)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !list.Has("no-vector-decomposition") {
		t.Fatal("alias did not resolve to its canonical option")
	}
	if !list.Filtered(options.VCApi).Has("no-vector-decomposition") {
		t.Error("canonical categories must drive Filtered")
	}
}

func TestLastOccurrenceWins(t *testing.T) {
	table := options.API()
	argv := []string{"-vc-optimize=none", "-vc-optimize=full"}
	list, err := options.ParseArgs(table, argv, options.VCApi)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if got := list.LastValue("optimize"); got != "full" {
		t.Errorf("LastValue = %q, want %q", got, "full")
	}
}

func TestLast_AcrossIDs(t *testing.T) {
	table := options.API()
	argv := []string{"-vc-optimize=full", "-ze-opt-disable"}
	list, err := options.ParseArgs(table, argv, options.VCApi|options.IGCApi)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	a := list.Last("optimize", "opt-disable")
	if a == nil || a.Canon.ID != "opt-disable" {
		t.Fatalf("Last = %+v, want the later opt-disable occurrence", a)
	}
}

func TestCanonical_AliasChain(t *testing.T) {
	table := options.API()
	alias := table.Lookup("double-grf")
	if alias == nil {
		t.Fatal("double-grf not in table")
	}
	canon := table.Canonical(alias)
	if canon.ID != "large-register-file" {
		t.Errorf("Canonical(double-grf) = %q", canon.ID)
	}
}
