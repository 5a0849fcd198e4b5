package driver

import (
	"errors"
	"fmt"
)

// The closed error taxonomy of the driver. Every stage returns its failure
// unmodified to the caller; Compile is the sole aggregation point. Broken
// builds (unemittable file type, unprimed target registry, bad pointer
// width) panic instead of returning: they are programming faults, not input.

// ErrNotThisCompiler signals that the API option string carries neither
// grammar marker: the input does not target this backend at all. Callers
// distinguish it from malformed input with errors.Is.
var ErrNotThisCompiler = errors.New("input does not target the vector backend")

// ParseError is a textual module syntax failure. The positioned diagnostic
// has already been written to the diagnostic stream.
type ParseError struct{}

func (*ParseError) Error() string { return "failed to parse input module" }

// BadEncodingError is a binary module deserialization failure.
type BadEncodingError struct {
	Msg string
}

func (e *BadEncodingError) Error() string {
	return "bad module encoding: " + e.Msg
}

// InvalidModuleError reports structural verification failure of an otherwise
// successfully parsed or decoded module.
type InvalidModuleError struct {
	Err error
}

func (e *InvalidModuleError) Error() string {
	return fmt.Sprintf("invalid module: %v", e.Err)
}

func (e *InvalidModuleError) Unwrap() error { return e.Err }

// TargetMachineError reports target machine construction failure.
type TargetMachineError struct {
	Triple string
	Msg    string
}

func (e *TargetMachineError) Error() string {
	return fmt.Sprintf("cannot create target machine for %q: %s", e.Triple, e.Msg)
}

// OptionError reports an unknown option, a missing option value or an
// unparseable option value. Internal marks the namespace it arose in.
type OptionError struct {
	Option   string
	Internal bool
}

func (e *OptionError) Error() string {
	ns := "api"
	if e.Internal {
		ns = "internal"
	}
	return fmt.Sprintf("invalid %s option: %s", ns, e.Option)
}
