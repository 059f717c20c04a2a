package interp

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/regvm/vm"
)

// Step fetches the instruction at PC, advances PC and executes it. EndStep
// is returned once PC has reached the end of the program; a fault aborts
// the step and leaves the state as the failing handler left it.
func (in *Interpreter) Step() (StepResult, error) {
	inst, err := in.Program.GetInstruction(in.PC)
	if err != nil {
		if errors.Is(err, vm.ErrEndOfCode) {
			log.Trace().Int("pc", in.PC).Msg("Step: end of code")
			return EndStep, nil
		}
		return EndStep, err
	}

	log.Trace().
		Str("opcode", inst.Code.String()).
		Int("pc", in.PC).
		Str("op", inst.String()).
		Int("call_depth", len(in.CallStack)).
		Msg("Step: executing instruction")

	in.PC++
	in.Steps++
	if err := in.execute(inst); err != nil {
		log.Trace().Str("opcode", inst.Code.String()).Int("pc", in.PC-1).Err(err).Msg("Step: fault")
		return EndStep, err
	}
	if in.PC >= in.Program.Len() {
		return EndStep, nil
	}
	return ContinueStep, nil
}

func (in *Interpreter) execute(inst vm.Op) error {
	switch inst.Code {
	case vm.NOP:
		log.Trace().Msg("  NOP")
	case vm.LOADV:
		v := vm.Clone(inst.Value)
		log.Trace().Int("target", inst.Target).Stringer("value", v).Msg("  LOADV")
		return in.setRegister(inst.Target, v)

	case vm.ADD, vm.SUB, vm.MUL, vm.DIV, vm.IDIV, vm.POW, vm.MOD:
		a, b, err := in.getRegisters(inst.A, inst.B)
		if err != nil {
			return err
		}
		return in.arith(inst, a, b)
	case vm.ADDK, vm.SUBK, vm.MULK, vm.DIVK, vm.IDIVK, vm.POWK, vm.MODK:
		b, err := in.getRegister(inst.B)
		if err != nil {
			return err
		}
		return in.arith(inst, immediate(inst), b)
	case vm.NEGATE:
		a, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		v, err := negate(a)
		if err != nil {
			return err
		}
		log.Trace().Stringer("input", a).Stringer("result", v).Msg("  NEGATE")
		return in.setRegister(inst.Target, v)

	case vm.BAND, vm.BOR, vm.BXOR, vm.BLSH, vm.BRSH, vm.BARSH:
		a, b, err := in.getRegisters(inst.A, inst.B)
		if err != nil {
			return err
		}
		v, err := bitwise(inst.Code, a, b)
		if err != nil {
			log.Trace().Str("op", inst.Code.String()).Stringer("a", a).Stringer("b", b).Err(err).Msg("  BITWISE_OP: error")
			return err
		}
		log.Trace().Str("op", inst.Code.String()).Stringer("a", a).Stringer("b", b).Stringer("result", v).Msg("  BITWISE_OP")
		return in.setRegister(inst.Target, v)
	case vm.BNOT:
		a, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		n, ok := a.(vm.IntValue)
		if !ok {
			return &vm.Fault{Kind: vm.OperandTypeMismatch, Expected: "Int", Actual: vm.Describe(a)}
		}
		return in.setRegister(inst.Target, ^n)

	case vm.AND, vm.OR:
		a, b, err := in.getRegisters(inst.A, inst.B)
		if err != nil {
			return err
		}
		return in.setRegister(inst.Target, logical(inst.Code, a, b))
	case vm.ANDK, vm.ORK:
		b, err := in.getRegister(inst.B)
		if err != nil {
			return err
		}
		return in.setRegister(inst.Target, logical(inst.Code, immediate(inst), b))
	case vm.NOT:
		a, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		return in.setRegister(inst.Target, vm.BoolValue(!a.AsBool()))
	case vm.NULL_COALESCE:
		a, b, err := in.getRegisters(inst.A, inst.B)
		if err != nil {
			return err
		}
		if a.Kind() == vm.KindNull {
			return in.setRegister(inst.Target, b)
		}
		return in.setRegister(inst.Target, a)

	case vm.EQ, vm.NEQ, vm.LT, vm.LTE, vm.GT, vm.GTE:
		a, b, err := in.getRegisters(inst.A, inst.B)
		if err != nil {
			return err
		}
		result := relation(inst.Code, a, b)
		log.Trace().Str("op", inst.Code.String()).Stringer("a", a).Stringer("b", b).Bool("result", result).Msg("  COMPARE")
		return in.setRegister(inst.Target, vm.BoolValue(result))

	case vm.INC:
		return in.counter(inst, 1)
	case vm.DEC:
		return in.counter(inst, -1)

	case vm.INDEX:
		obj, key, err := in.getRegisters(inst.A, inst.B)
		if err != nil {
			return err
		}
		return in.index(inst, obj, key)
	case vm.INDEXN:
		obj, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		return in.index(inst, obj, vm.IntValue(inst.N))
	case vm.INDEXK:
		obj, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		return in.index(inst, obj, immediate(inst))

	case vm.STORE_INDEX:
		obj, key, err := in.getRegisters(inst.Target, inst.B)
		if err != nil {
			return err
		}
		src, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		return setIndex(obj, key, src)
	case vm.STORE_INDEXN:
		obj, src, err := in.getRegisters(inst.Target, inst.A)
		if err != nil {
			return err
		}
		return setIndex(obj, vm.IntValue(inst.N), src)
	case vm.STORE_INDEXK:
		obj, src, err := in.getRegisters(inst.Target, inst.A)
		if err != nil {
			return err
		}
		return setIndex(obj, immediate(inst), src)
	case vm.DELETE_INDEX:
		obj, key, err := in.getRegisters(inst.Target, inst.B)
		if err != nil {
			return err
		}
		return deleteIndex(obj, key)
	case vm.DELETE_INDEXN:
		obj, err := in.getRegister(inst.Target)
		if err != nil {
			return err
		}
		return deleteIndex(obj, vm.IntValue(inst.N))
	case vm.DELETE_INDEXK:
		obj, err := in.getRegister(inst.Target)
		if err != nil {
			return err
		}
		return deleteIndex(obj, immediate(inst))

	case vm.NEW_ARRAY:
		return in.setRegister(inst.Target, vm.NewArray())
	case vm.NEW_OBJECT:
		return in.setRegister(inst.Target, vm.NewObject())
	case vm.ARRAY_PUSH:
		src, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		return in.push(inst.Target, src)
	case vm.ARRAY_PUSHK:
		return in.push(inst.Target, immediate(inst))
	case vm.LEN:
		src, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		var n int
		switch v := src.(type) {
		case *vm.ArrayValue:
			n = v.Len()
		case *vm.ObjectValue:
			n = v.Len()
		case vm.StrValue:
			n = len(v)
		default:
			log.Trace().Stringer("source", src).Msg("  LEN: no length")
			return nil
		}
		return in.setRegister(inst.Target, vm.IntValue(n))

	case vm.JMP:
		return in.jump(inst.Addr)
	case vm.JZ, vm.JNZ:
		a, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		if a.AsBool() == (inst.Code == vm.JNZ) {
			return in.jump(inst.Addr)
		}
	case vm.JLT, vm.JLTE, vm.JGT, vm.JGTE, vm.JEQ, vm.JNEQ:
		a, b, err := in.getRegisters(inst.A, inst.B)
		if err != nil {
			return err
		}
		if relation(inst.Code, a, b) {
			return in.jump(inst.Addr)
		}

	case vm.STORE:
		v, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		in.Variables[inst.Name] = v
		log.Trace().Str("variable", inst.Name).Stringer("value", v).Msg("  STORE")
	case vm.STOREK:
		v := vm.Clone(inst.Value)
		in.Variables[inst.Name] = v
		log.Trace().Str("variable", inst.Name).Stringer("value", v).Msg("  STOREK")
	case vm.LOAD:
		v, err := in.lookupVar(inst.Name)
		if err != nil {
			return err
		}
		log.Trace().Str("variable", inst.Name).Stringer("value", v).Msg("  LOAD")
		return in.setRegister(inst.Target, v)

	case vm.CALL:
		ret := in.PC
		if err := in.jump(inst.Addr); err != nil {
			return err
		}
		in.CallStack = append(in.CallStack, Frame{ReturnAddress: ret})
		log.Trace().Int("address", inst.Addr).Int("return_address", ret).Int("call_depth", len(in.CallStack)).Msg("  CALL")
	case vm.RETURN:
		if len(in.CallStack) == 0 {
			return &vm.Fault{Kind: vm.CallStackEmpty}
		}
		f := in.CallStack[len(in.CallStack)-1]
		in.CallStack = in.CallStack[:len(in.CallStack)-1]
		in.PC = f.ReturnAddress
		log.Trace().Int("return_address", f.ReturnAddress).Int("call_depth", len(in.CallStack)).Msg("  RETURN")

	case vm.PRINT:
		v, err := in.getRegister(inst.A)
		if err != nil {
			return err
		}
		in.print(v)
	case vm.PRINTK:
		in.print(immediate(inst))
	case vm.HALT:
		in.PC = in.Program.Len()

	default:
		return fmt.Errorf("%w: unknown opcode %d", vm.ErrInvalidProgram, uint32(inst.Code))
	}
	return nil
}

// immediate returns the instruction's immediate operand. Immediates are
// read-only; anything that stores them must Clone first.
func immediate(inst vm.Op) vm.Value {
	if inst.Value == nil {
		return vm.Null
	}
	return inst.Value
}

func (in *Interpreter) print(v vm.Value) {
	out := in.Out
	if out == nil {
		return
	}
	fmt.Fprintln(out, vm.Format(v))
}

func (in *Interpreter) arith(inst vm.Op, a, b vm.Value) error {
	v, err := arith(inst.Code, a, b)
	if err != nil {
		log.Trace().Str("op", inst.Code.String()).Stringer("a", a).Stringer("b", b).Err(err).Msg("  NUMERIC_OP: error")
		return err
	}
	log.Trace().Str("op", inst.Code.String()).Stringer("a", a).Stringer("b", b).Stringer("result", v).Msg("  NUMERIC_OP")
	return in.setRegister(inst.Target, v)
}

func (in *Interpreter) counter(inst vm.Op, delta vm.IntValue) error {
	v, err := in.lookupVar(inst.Name)
	if err != nil {
		return err
	}
	n, ok := v.(vm.IntValue)
	if !ok {
		return &vm.Fault{Kind: vm.OperandTypeMismatch, Expected: "Int", Actual: vm.Describe(v)}
	}
	next := n + delta
	in.Variables[inst.Name] = next
	log.Trace().Str("op", inst.Code.String()).Str("variable", inst.Name).Int32("old", int32(n)).Int32("new", int32(next)).Msg("  COUNTER")
	if !inst.HasTarget {
		return nil
	}
	if inst.ReturnOld {
		return in.setRegister(inst.Target, n)
	}
	return in.setRegister(inst.Target, next)
}

func (in *Interpreter) index(inst vm.Op, obj, key vm.Value) error {
	v, err := getIndex(obj, key)
	if err != nil {
		log.Trace().Str("op", inst.Code.String()).Stringer("obj", obj).Stringer("key", key).Err(err).Msg("  INDEX: error")
		return err
	}
	log.Trace().Str("op", inst.Code.String()).Stringer("obj", obj).Stringer("key", key).Stringer("value", v).Msg("  INDEX")
	return in.setRegister(inst.Target, v)
}

func (in *Interpreter) push(target int, v vm.Value) error {
	dst, err := in.getRegister(target)
	if err != nil {
		return err
	}
	arr, ok := dst.(*vm.ArrayValue)
	if !ok {
		return &vm.Fault{Kind: vm.OperandTypeMismatch, Expected: "Array", Actual: vm.Describe(dst)}
	}
	arr.Push(v)
	return nil
}

// arith implements the arithmetic opcodes and their immediate variants.
// Operands are widened to float64; a result from two Ints narrows back to
// Int when it has no fractional part, and IDIV always narrows.
func arith(op vm.Opcode, a, b vm.Value) (vm.Value, error) {
	x, y, bothInt, ok := numbers(a, b)
	if !ok {
		if op == vm.ADD || op == vm.ADDK {
			if as, ok := a.(vm.StrValue); ok {
				if bs, ok := b.(vm.StrValue); ok {
					return as + bs, nil
				}
			}
		}
		return nil, &vm.Fault{
			Kind:     vm.BinaryTypeMismatch,
			Opcode:   op.String(),
			Expected: "number",
			Actual:   vm.Describe(a),
			ActualB:  vm.Describe(b),
		}
	}
	r := floatOp(op, x, y)
	if op == vm.IDIV || op == vm.IDIVK || (bothInt && r-math.Trunc(r) == 0) {
		return narrow(r), nil
	}
	return vm.FloatValue(r), nil
}

func numbers(a, b vm.Value) (float64, float64, bool, bool) {
	var x, y float64
	var aInt, bInt bool
	switch v := a.(type) {
	case vm.IntValue:
		x, aInt = float64(v), true
	case vm.FloatValue:
		x = float64(v)
	default:
		return 0, 0, false, false
	}
	switch v := b.(type) {
	case vm.IntValue:
		y, bInt = float64(v), true
	case vm.FloatValue:
		y = float64(v)
	default:
		return 0, 0, false, false
	}
	return x, y, aInt && bInt, true
}

func floatOp(op vm.Opcode, a, b float64) float64 {
	switch op {
	case vm.ADD, vm.ADDK:
		return a + b
	case vm.SUB, vm.SUBK:
		return a - b
	case vm.MUL, vm.MULK:
		return a * b
	case vm.DIV, vm.DIVK:
		return a / b
	case vm.IDIV, vm.IDIVK:
		return math.Floor(a / b)
	case vm.POW, vm.POWK:
		if b == math.Trunc(b) && math.Abs(b) <= math.MaxInt32 {
			return powi(a, int(b))
		}
		return math.Pow(a, b)
	case vm.MOD, vm.MODK:
		return math.Mod(a, b)
	}
	panic("unhandled numeric opcode " + op.String())
}

func powi(x float64, n int) float64 {
	if n < 0 {
		return 1 / powi(x, -n)
	}
	r := 1.0
	for n > 0 {
		if n&1 == 1 {
			r *= x
		}
		x *= x
		n >>= 1
	}
	return r
}

// narrow converts to Int, saturating at the int32 bounds. NaN becomes 0.
func narrow(r float64) vm.IntValue {
	switch {
	case math.IsNaN(r):
		return 0
	case r >= math.MaxInt32:
		return math.MaxInt32
	case r <= math.MinInt32:
		return math.MinInt32
	}
	return vm.IntValue(int32(r))
}

func negate(v vm.Value) (vm.Value, error) {
	switch n := v.(type) {
	case vm.IntValue:
		if n == math.MinInt32 {
			return vm.IntValue(math.MaxInt32), nil
		}
		return -n, nil
	case vm.FloatValue:
		return -n, nil
	}
	return nil, &vm.Fault{Kind: vm.OperandTypeMismatch, Expected: "number", Actual: vm.Describe(v)}
}

func bitwise(op vm.Opcode, a, b vm.Value) (vm.Value, error) {
	x, aok := a.(vm.IntValue)
	y, bok := b.(vm.IntValue)
	if !aok || !bok {
		return nil, &vm.Fault{
			Kind:     vm.BinaryTypeMismatch,
			Opcode:   op.String(),
			Expected: "Int",
			Actual:   vm.Describe(a),
			ActualB:  vm.Describe(b),
		}
	}
	shift := uint32(y) & 31
	switch op {
	case vm.BAND:
		return x & y, nil
	case vm.BOR:
		return x | y, nil
	case vm.BXOR:
		return x ^ y, nil
	case vm.BLSH:
		return x << shift, nil
	case vm.BRSH:
		return vm.IntValue(uint32(x) >> shift), nil
	case vm.BARSH:
		return x >> shift, nil
	}
	panic("unhandled bitwise opcode " + op.String())
}

func logical(op vm.Opcode, a, b vm.Value) vm.Value {
	switch op {
	case vm.AND, vm.ANDK:
		return vm.BoolValue(a.AsBool() && b.AsBool())
	default:
		return vm.BoolValue(a.AsBool() || b.AsBool())
	}
}

// relation evaluates the comparison opcodes and the relational jumps. Pairs
// without an ordering satisfy no ordered relation.
func relation(op vm.Opcode, a, b vm.Value) bool {
	switch op {
	case vm.EQ, vm.JEQ:
		return vm.Equal(a, b)
	case vm.NEQ, vm.JNEQ:
		return !vm.Equal(a, b)
	}
	c, ok := vm.Compare(a, b)
	if !ok {
		return false
	}
	switch op {
	case vm.LT, vm.JLT:
		return c < 0
	case vm.LTE, vm.JLTE:
		return c <= 0
	case vm.GT, vm.JGT:
		return c > 0
	case vm.GTE, vm.JGTE:
		return c >= 0
	}
	return false
}

func getIndex(obj, key vm.Value) (vm.Value, error) {
	switch o := obj.(type) {
	case *vm.ArrayValue:
		i, ok := key.(vm.IntValue)
		if !ok {
			return nil, &vm.Fault{Kind: vm.InvalidIndexType, Actual: vm.Describe(key)}
		}
		return o.Index(int(i)), nil
	case *vm.ObjectValue:
		return o.Index(key), nil
	case vm.StrValue:
		i, ok := key.(vm.IntValue)
		if !ok {
			return nil, &vm.Fault{Kind: vm.InvalidIndexType, Actual: vm.Describe(key)}
		}
		return charAt(string(o), int(i)), nil
	}
	return vm.Null, nil
}

// charAt indexes s by Unicode scalar position.
func charAt(s string, i int) vm.Value {
	if i < 0 {
		return vm.Null
	}
	n := 0
	for _, r := range s {
		if n == i {
			return vm.StrValue(string(r))
		}
		n++
	}
	return vm.Null
}

// setIndex and deleteIndex dispatch like getIndex: targets other than arrays
// and objects are left untouched.
func setIndex(obj, key, src vm.Value) error {
	switch o := obj.(type) {
	case *vm.ArrayValue:
		i, ok := key.(vm.IntValue)
		if !ok || i < 0 {
			return &vm.Fault{Kind: vm.InvalidIndexType, Actual: vm.Describe(key)}
		}
		o.SetIndex(int(i), src)
	case *vm.ObjectValue:
		o.Set(key, src)
	default:
		log.Trace().Str("target", vm.Describe(obj)).Msg("  write through non-container ignored")
	}
	return nil
}

func deleteIndex(obj, key vm.Value) error {
	switch o := obj.(type) {
	case *vm.ArrayValue:
		i, ok := key.(vm.IntValue)
		if !ok || i < 0 {
			return &vm.Fault{Kind: vm.InvalidIndexType, Actual: vm.Describe(key)}
		}
		o.Delete(int(i))
	case *vm.ObjectValue:
		o.Delete(key)
	default:
		log.Trace().Str("target", vm.Describe(obj)).Msg("  delete through non-container ignored")
	}
	return nil
}
