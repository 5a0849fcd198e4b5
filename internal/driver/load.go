package driver

import (
	"vecc/internal/ir"
	"vecc/internal/wirefmt"
)

// moduleFromText parses the textual grammar. A syntax failure has already
// printed its diagnostic; a module that parses but fails verification is a
// distinct invalid-module condition, not a parse failure.
func moduleFromText(input []byte) (*ir.Module, error) {
	m, err := ir.Parse(input, diagnosticWriter())
	if err != nil {
		return nil, &ParseError{}
	}
	if verr := ir.Verify(m); verr != nil {
		return nil, &InvalidModuleError{Err: verr}
	}
	return m, nil
}

// moduleFromBinary decodes the binary module encoding, then runs the same
// structural verification as the text path.
func moduleFromBinary(input []byte) (*ir.Module, error) {
	m, err := ir.Decode(input)
	if err != nil {
		return nil, &BadEncodingError{Msg: err.Error()}
	}
	if verr := ir.Verify(m); verr != nil {
		return nil, &InvalidModuleError{Err: verr}
	}
	return m, nil
}

// moduleFromWire translates the wire encoding to the binary form, then
// delegates to the binary path.
func moduleFromWire(input []byte, specConstIDs []uint32, specConstValues []uint64) (*ir.Module, error) {
	translated, err := wirefmt.Translate(input, specConstIDs, specConstValues)
	if err != nil {
		return nil, &BadEncodingError{Msg: err.Error()}
	}
	m, err := moduleFromBinary(translated)
	if err != nil {
		return nil, err
	}
	m.SourceFormat = ir.SourceWire
	return m, nil
}

// loadModule dispatches on the declared input format. Specialization
// constants are meaningful only to the wire path; other formats ignore them.
func loadModule(input []byte, ftype FileType,
	specConstIDs []uint32, specConstValues []uint64) (*ir.Module, error) {
	switch ftype {
	case FileWire:
		return moduleFromWire(input, specConstIDs, specConstValues)
	case FileText:
		return moduleFromText(input)
	case FileBinary:
		return moduleFromBinary(input)
	}
	panic("unknown input kind")
}
