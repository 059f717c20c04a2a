package vm

import (
	"encoding/binary"
	"math"

	"github.com/dgryski/go-farm"
)

// Hash fingerprints a value. Floats hash by their raw bits and objects by
// their key-sorted entries, so the result does not depend on storage layout.
func Hash(v Value) uint64 {
	return farm.Hash64(appendCanonical(nil, v))
}

func appendCanonical(b []byte, v Value) []byte {
	b = append(b, byte(kindOf(v)))
	switch val := v.(type) {
	case IntValue:
		b = binary.LittleEndian.AppendUint32(b, uint32(val))
	case FloatValue:
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(float64(val)))
	case StrValue:
		b = binary.AppendUvarint(b, uint64(len(val)))
		b = append(b, val...)
	case BoolValue:
		if val {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	case *ArrayValue:
		b = binary.AppendUvarint(b, uint64(len(val.Elems)))
		for _, e := range val.Elems {
			b = appendCanonical(b, e)
		}
	case *ObjectValue:
		entries := val.Entries()
		b = binary.AppendUvarint(b, uint64(len(entries)))
		for _, e := range entries {
			b = appendCanonical(b, e.Key)
			b = appendCanonical(b, e.Value)
		}
	}
	return b
}
