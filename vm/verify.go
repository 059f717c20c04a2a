package vm

import (
	"errors"
	"fmt"
)

var ErrInvalidProgram = errors.New("invalid program")

// Verify statically checks every instruction against a register file of the
// given size: opcodes must be known, register operands in range, jump and
// call targets inside the program, constant indices non-negative. All
// problems are reported together. The interpreter never requires this; it
// faults at the offending instruction instead.
func (p *Program) Verify(registers int) error {
	var errs []error
	for pc, op := range p.Instructions {
		if !op.Code.Valid() {
			errs = append(errs, fmt.Errorf("%w: %03d: unknown opcode %d", ErrInvalidProgram, pc, uint32(op.Code)))
			continue
		}
		for _, r := range op.Registers() {
			if r < 0 || r >= registers {
				errs = append(errs, fmt.Errorf("%w: %03d: %s: register r%d outside r0..r%d", ErrInvalidProgram, pc, op, r, registers-1))
			}
		}
		if op.Jumps() && (op.Addr < 0 || op.Addr >= len(p.Instructions)) {
			errs = append(errs, fmt.Errorf("%w: %03d: %s: address outside 0..%d", ErrInvalidProgram, pc, op, len(p.Instructions)-1))
		}
		for _, operand := range op.Code.Shape() {
			switch operand {
			case OperandN:
				if op.N < 0 {
					errs = append(errs, fmt.Errorf("%w: %03d: %s: negative index", ErrInvalidProgram, pc, op))
				}
			case OperandValue:
				if op.Value == nil {
					errs = append(errs, fmt.Errorf("%w: %03d: %s: missing immediate", ErrInvalidProgram, pc, op))
				}
			case OperandName:
				if op.Name == "" {
					errs = append(errs, fmt.Errorf("%w: %03d: %s: empty variable name", ErrInvalidProgram, pc, op))
				}
			}
		}
	}
	return errors.Join(errs...)
}
