package ir

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Binary module container: a 4-byte magic followed by a msgpack payload.
// Schema version lives inside the payload so decoders can reject mismatches
// with a precise message.
var binaryMagic = []byte("VBC1")

const binarySchemaVersion uint16 = 1

// HasBinaryMagic reports whether data starts with the binary module magic.
func HasBinaryMagic(data []byte) bool {
	return bytes.HasPrefix(data, binaryMagic)
}

type binaryPayload struct {
	Schema       uint16
	Name         string
	TargetTriple string
	DataLayout   string
	SpecConsts   []SpecConst
	Globals      []Global
	Funcs        []*Func
}

// Encode serializes m into the binary module container.
func Encode(m *Module) ([]byte, error) {
	payload := binaryPayload{
		Schema:       binarySchemaVersion,
		Name:         m.Name,
		TargetTriple: m.TargetTriple,
		DataLayout:   m.DataLayout,
		SpecConsts:   m.SpecConsts,
		Globals:      m.Globals,
		Funcs:        m.Funcs,
	}
	body, err := msgpack.Marshal(&payload)
	if err != nil {
		return nil, fmt.Errorf("encode module: %w", err)
	}
	out := make([]byte, 0, len(binaryMagic)+len(body))
	out = append(out, binaryMagic...)
	out = append(out, body...)
	return out, nil
}

// Decode deserializes a binary module container produced by Encode.
func Decode(data []byte) (*Module, error) {
	if !HasBinaryMagic(data) {
		return nil, fmt.Errorf("not a binary module: bad magic")
	}
	var payload binaryPayload
	if err := msgpack.Unmarshal(data[len(binaryMagic):], &payload); err != nil {
		return nil, fmt.Errorf("corrupted module payload: %w", err)
	}
	if payload.Schema != binarySchemaVersion {
		return nil, fmt.Errorf("unsupported module schema %d, want %d",
			payload.Schema, binarySchemaVersion)
	}
	return &Module{
		Name:         payload.Name,
		TargetTriple: payload.TargetTriple,
		DataLayout:   payload.DataLayout,
		SourceFormat: SourceBinary,
		SpecConsts:   payload.SpecConsts,
		Globals:      payload.Globals,
		Funcs:        payload.Funcs,
	}, nil
}
