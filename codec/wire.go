package codec

import (
	"fmt"
	"math"

	"github.com/timewinder-dev/regvm/vm"
)

// Wire records mirror vm types with plain, tag-addressable fields so both
// body formats can carry them without custom marshalers.

type wireProgram struct {
	Version      uint8       `msgpack:"version" cbor:"version"`
	Constants    []wireValue `msgpack:"constants" cbor:"constants,omitempty"`
	Instructions []wireOp    `msgpack:"instructions" cbor:"instructions"`
}

type wireOp struct {
	Code      uint32     `msgpack:"code" cbor:"code"`
	Target    int        `msgpack:"target" cbor:"target,omitempty"`
	A         int        `msgpack:"a" cbor:"a,omitempty"`
	B         int        `msgpack:"b" cbor:"b,omitempty"`
	N         int        `msgpack:"n" cbor:"n,omitempty"`
	Addr      int        `msgpack:"addr" cbor:"addr,omitempty"`
	Name      string     `msgpack:"name" cbor:"name,omitempty"`
	Value     *wireValue `msgpack:"value" cbor:"value,omitempty"`
	HasTarget bool       `msgpack:"has_target" cbor:"has_target,omitempty"`
	ReturnOld bool       `msgpack:"returns_old" cbor:"returns_old,omitempty"`
}

// wireValue is a tagged union; only the fields for Kind are set. Objects
// travel as parallel key/value lists in sorted key order.
type wireValue struct {
	Kind  uint8       `msgpack:"kind" cbor:"kind"`
	Int   int32       `msgpack:"int" cbor:"int,omitempty"`
	Float uint64      `msgpack:"float" cbor:"float,omitempty"` // math.Float64bits
	Str   string      `msgpack:"str" cbor:"str,omitempty"`
	Bool  bool        `msgpack:"bool" cbor:"bool,omitempty"`
	Elems []wireValue `msgpack:"elems" cbor:"elems,omitempty"`
	Keys  []wireValue `msgpack:"keys" cbor:"keys,omitempty"`
	Vals  []wireValue `msgpack:"vals" cbor:"vals,omitempty"`
}

func decomposeProgram(p *vm.Program) wireProgram {
	out := wireProgram{
		Version:      p.Version,
		Instructions: make([]wireOp, len(p.Instructions)),
	}
	for _, c := range p.Constants {
		out.Constants = append(out.Constants, decomposeValue(c))
	}
	for i, op := range p.Instructions {
		w := wireOp{
			Code:      uint32(op.Code),
			Target:    op.Target,
			A:         op.A,
			B:         op.B,
			N:         op.N,
			Addr:      op.Addr,
			Name:      op.Name,
			HasTarget: op.HasTarget,
			ReturnOld: op.ReturnOld,
		}
		if op.Value != nil {
			v := decomposeValue(op.Value)
			w.Value = &v
		}
		out.Instructions[i] = w
	}
	return out
}

func decomposeValue(v vm.Value) wireValue {
	switch val := v.(type) {
	case vm.IntValue:
		return wireValue{Kind: uint8(vm.KindInt), Int: int32(val)}
	case vm.FloatValue:
		return wireValue{Kind: uint8(vm.KindFloat), Float: math.Float64bits(float64(val))}
	case vm.StrValue:
		return wireValue{Kind: uint8(vm.KindString), Str: string(val)}
	case vm.BoolValue:
		return wireValue{Kind: uint8(vm.KindBoolean), Bool: bool(val)}
	case *vm.ArrayValue:
		out := wireValue{Kind: uint8(vm.KindArray)}
		for _, e := range val.Elems {
			out.Elems = append(out.Elems, decomposeValue(e))
		}
		return out
	case *vm.ObjectValue:
		out := wireValue{Kind: uint8(vm.KindObject)}
		for _, e := range val.Entries() {
			out.Keys = append(out.Keys, decomposeValue(e.Key))
			out.Vals = append(out.Vals, decomposeValue(e.Value))
		}
		return out
	}
	return wireValue{Kind: uint8(vm.KindNull)}
}

func recomposeProgram(w *wireProgram) (*vm.Program, error) {
	p := &vm.Program{
		Version:      w.Version,
		Instructions: make([]vm.Op, len(w.Instructions)),
	}
	for i := range w.Constants {
		c, err := recomposeValue(&w.Constants[i])
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		p.Constants = append(p.Constants, c)
	}
	for i, op := range w.Instructions {
		out := vm.Op{
			Code:      vm.Opcode(op.Code),
			Target:    op.Target,
			A:         op.A,
			B:         op.B,
			N:         op.N,
			Addr:      op.Addr,
			Name:      op.Name,
			HasTarget: op.HasTarget,
			ReturnOld: op.ReturnOld,
		}
		if op.Value != nil {
			v, err := recomposeValue(op.Value)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			out.Value = v
		}
		p.Instructions[i] = out
	}
	return p, nil
}

func recomposeValue(w *wireValue) (vm.Value, error) {
	switch vm.Kind(w.Kind) {
	case vm.KindInt:
		return vm.IntValue(w.Int), nil
	case vm.KindFloat:
		return vm.FloatValue(math.Float64frombits(w.Float)), nil
	case vm.KindString:
		return vm.StrValue(w.Str), nil
	case vm.KindBoolean:
		return vm.BoolValue(w.Bool), nil
	case vm.KindNull:
		return vm.Null, nil
	case vm.KindArray:
		arr := &vm.ArrayValue{Elems: make([]vm.Value, len(w.Elems))}
		for i := range w.Elems {
			e, err := recomposeValue(&w.Elems[i])
			if err != nil {
				return nil, err
			}
			arr.Elems[i] = e
		}
		return arr, nil
	case vm.KindObject:
		if len(w.Keys) != len(w.Vals) {
			return nil, fmt.Errorf("%w: object has %d keys and %d values", ErrMalformed, len(w.Keys), len(w.Vals))
		}
		obj := vm.NewObject()
		for i := range w.Keys {
			k, err := recomposeValue(&w.Keys[i])
			if err != nil {
				return nil, err
			}
			v, err := recomposeValue(&w.Vals[i])
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: unknown value kind %d", ErrMalformed, w.Kind)
}
