package asm

import (
	"fmt"
	"slices"

	"github.com/timewinder-dev/regvm/vm"
	"go.starlark.net/starlark"
)

type labelRef struct {
	pc    int
	label string
}

type builder struct {
	ops       []vm.Op
	constants []vm.Value
	labels    map[string]int
	refs      []labelRef
}

func newBuilder() *builder {
	return &builder{labels: make(map[string]int)}
}

func (b *builder) predeclared() starlark.StringDict {
	d := starlark.StringDict{
		"label": starlark.NewBuiltin("label", b.label),
		"const": starlark.NewBuiltin("const", b.constant),
	}
	for _, code := range vm.Opcodes() {
		d[code.String()] = starlark.NewBuiltin(code.String(), b.opBuiltin(code))
	}
	return d
}

func (b *builder) label(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	if _, ok := b.labels[name]; ok {
		return nil, fmt.Errorf("%s: %w: %q", fn.Name(), ErrDuplicateLabel, name)
	}
	b.labels[name] = len(b.ops)
	return starlark.MakeInt(len(b.ops)), nil
}

func (b *builder) constant(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	val, err := toValue(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	b.constants = append(b.constants, val)
	return starlark.MakeInt(len(b.constants) - 1), nil
}

type builtinFunc func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)

// opBuiltin derives the builtin for code from its operand shape. Parameters
// are positional in shape order or keyword by operand name.
func (b *builder) opBuiltin(code vm.Opcode) builtinFunc {
	shape := code.Shape()
	return func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > len(shape) {
			return nil, fmt.Errorf("%s: got %d arguments, want at most %d", fn.Name(), len(args), len(shape))
		}
		vals := make([]starlark.Value, len(shape))
		copy(vals, args)
		for _, kv := range kwargs {
			name := string(kv[0].(starlark.String))
			i := slices.IndexFunc(shape, func(o vm.Operand) bool { return o.String() == name })
			if i < 0 {
				return nil, fmt.Errorf("%s: unexpected keyword argument %s", fn.Name(), name)
			}
			if vals[i] != nil {
				return nil, fmt.Errorf("%s: got multiple values for %s", fn.Name(), name)
			}
			vals[i] = kv[1]
		}

		op := vm.Op{Code: code}
		for i, operand := range shape {
			v := vals[i]
			if v == nil {
				if operand == vm.OperandOptTarget || operand == vm.OperandReturnOld {
					continue
				}
				return nil, fmt.Errorf("%s: missing argument %s", fn.Name(), operand)
			}
			if err := b.setOperand(&op, operand, v); err != nil {
				return nil, fmt.Errorf("%s: %s: %w", fn.Name(), operand, err)
			}
		}
		b.ops = append(b.ops, op)
		return starlark.MakeInt(len(b.ops) - 1), nil
	}
}

func (b *builder) setOperand(op *vm.Op, operand vm.Operand, v starlark.Value) error {
	var err error
	switch operand {
	case vm.OperandTarget:
		op.Target, err = starlark.AsInt32(v)
	case vm.OperandA:
		op.A, err = starlark.AsInt32(v)
	case vm.OperandB:
		op.B, err = starlark.AsInt32(v)
	case vm.OperandN:
		op.N, err = starlark.AsInt32(v)
	case vm.OperandAddr:
		if s, ok := v.(starlark.String); ok {
			b.refs = append(b.refs, labelRef{pc: len(b.ops), label: string(s)})
			return nil
		}
		op.Addr, err = starlark.AsInt32(v)
	case vm.OperandName:
		s, ok := starlark.AsString(v)
		if !ok {
			return fmt.Errorf("got %s, want string", v.Type())
		}
		op.Name = s
	case vm.OperandValue:
		op.Value, err = toValue(v)
	case vm.OperandOptTarget:
		if v == starlark.None {
			return nil
		}
		op.HasTarget = true
		op.Target, err = starlark.AsInt32(v)
	case vm.OperandReturnOld:
		op.ReturnOld = bool(v.Truth())
	}
	return err
}

func (b *builder) intoProgram() (*vm.Program, error) {
	for _, ref := range b.refs {
		addr, ok := b.labels[ref.label]
		if !ok {
			return nil, fmt.Errorf("%03d: %s: %w: %q", ref.pc, b.ops[ref.pc].Code, ErrUnknownLabel, ref.label)
		}
		b.ops[ref.pc].Addr = addr
	}
	return vm.NewProgram(b.ops, b.constants), nil
}

// toValue converts Starlark data to a vm.Value. Lists and tuples become
// arrays, dicts become objects.
func toValue(v starlark.Value) (vm.Value, error) {
	switch t := v.(type) {
	case starlark.NoneType:
		return vm.Null, nil
	case starlark.Bool:
		return vm.BoolValue(t), nil
	case starlark.Int:
		n, err := starlark.AsInt32(t)
		if err != nil {
			return nil, err
		}
		return vm.IntValue(n), nil
	case starlark.Float:
		return vm.FloatValue(t), nil
	case starlark.String:
		return vm.StrValue(t), nil
	case *starlark.List:
		return iterableToArray(t)
	case starlark.Tuple:
		return iterableToArray(t)
	case *starlark.Dict:
		obj := vm.NewObject()
		for _, item := range t.Items() {
			k, err := toValue(item[0])
			if err != nil {
				return nil, err
			}
			val, err := toValue(item[1])
			if err != nil {
				return nil, err
			}
			obj.Set(k, val)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("cannot convert %s to a value", v.Type())
}

func iterableToArray(it starlark.Iterable) (vm.Value, error) {
	arr := vm.NewArray()
	iter := it.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		e, err := toValue(x)
		if err != nil {
			return nil, err
		}
		arr.Push(e)
	}
	return arr, nil
}
