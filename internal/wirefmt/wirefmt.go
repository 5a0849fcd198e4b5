// Package wirefmt translates the portable wire encoding of a module into the
// binary module form consumed by the rest of the pipeline. The wire container
// wraps a binary module payload and a table of unresolved specialization
// constants; translation substitutes caller-provided constant values by ID
// and re-encodes.
package wirefmt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"

	"vecc/internal/ir"
)

var wireMagic = []byte("VWF1")

const wireVersion uint16 = 1

// headerSize is the magic plus the little-endian version word.
const headerSize = 6

// HasMagic reports whether data starts with the wire container magic.
func HasMagic(data []byte) bool {
	return bytes.HasPrefix(data, wireMagic)
}

// Wrap packs an encoded binary module into a wire container. It is the
// producer-side counterpart of Translate, used by tooling and tests.
func Wrap(encoded []byte) []byte {
	out := make([]byte, 0, headerSize+len(encoded))
	out = append(out, wireMagic...)
	out = binary.LittleEndian.AppendUint16(out, wireVersion)
	return append(out, encoded...)
}

// Translate converts a wire container into binary module bytes, substituting
// specialization constants. The two arrays are parallel; the caller is
// responsible for checking their lengths match. Unknown constant IDs are
// ignored. Values that do not fit the declared constant width are rejected.
func Translate(input []byte, specConstIDs []uint32, specConstValues []uint64) ([]byte, error) {
	if !HasMagic(input) {
		return nil, fmt.Errorf("not a wire module: bad magic")
	}
	if len(input) < headerSize {
		return nil, fmt.Errorf("truncated wire header")
	}
	version := binary.LittleEndian.Uint16(input[len(wireMagic):headerSize])
	if version != wireVersion {
		return nil, fmt.Errorf("unsupported wire version %d, want %d", version, wireVersion)
	}

	m, err := ir.Decode(input[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("wire payload: %w", err)
	}

	byID := make(map[uint32]uint64, len(specConstIDs))
	for i, id := range specConstIDs {
		byID[id] = specConstValues[i]
	}
	for i := range m.SpecConsts {
		sc := &m.SpecConsts[i]
		val, ok := byID[sc.ID]
		if !ok {
			continue
		}
		if sc.Bits == 32 {
			if _, err := safecast.Conv[uint32](val); err != nil {
				return nil, fmt.Errorf("spec constant %d: value %d does not fit 32 bits", sc.ID, val)
			}
		}
		sc.Value = val
	}

	return ir.Encode(m)
}
