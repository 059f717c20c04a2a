package vm

import (
	"fmt"
	"strings"
)

// Op is one instruction. Which fields are meaningful depends on Code; see
// the operand comments on the opcode constants and Opcode.Shape.
type Op struct {
	Code      Opcode
	Target    int
	A         int
	B         int
	N         int
	Addr      int
	Name      string
	Value     Value
	HasTarget bool
	ReturnOld bool
}

func (o Op) String() string {
	shape := o.Code.Shape()
	if len(shape) == 0 {
		return o.Code.String()
	}
	parts := make([]string, 0, len(shape))
	for _, operand := range shape {
		switch operand {
		case OperandTarget:
			parts = append(parts, fmt.Sprintf("r%d", o.Target))
		case OperandA:
			parts = append(parts, fmt.Sprintf("r%d", o.A))
		case OperandB:
			parts = append(parts, fmt.Sprintf("r%d", o.B))
		case OperandN:
			parts = append(parts, fmt.Sprintf("#%d", o.N))
		case OperandAddr:
			parts = append(parts, fmt.Sprintf("@%d", o.Addr))
		case OperandName:
			parts = append(parts, fmt.Sprintf("$%s", o.Name))
		case OperandValue:
			parts = append(parts, Describe(o.Value))
		case OperandOptTarget:
			if o.HasTarget {
				parts = append(parts, fmt.Sprintf("r%d", o.Target))
			}
		case OperandReturnOld:
			if o.HasTarget && o.ReturnOld {
				parts = append(parts, "old")
			}
		}
	}
	return o.Code.String() + " " + strings.Join(parts, ", ")
}

// Registers returns the register operands the instruction touches.
func (o Op) Registers() []int {
	var regs []int
	for _, operand := range o.Code.Shape() {
		switch operand {
		case OperandTarget:
			regs = append(regs, o.Target)
		case OperandA:
			regs = append(regs, o.A)
		case OperandB:
			regs = append(regs, o.B)
		case OperandOptTarget:
			if o.HasTarget {
				regs = append(regs, o.Target)
			}
		}
	}
	return regs
}

// Jumps reports whether the instruction carries an instruction address.
func (o Op) Jumps() bool {
	for _, operand := range o.Code.Shape() {
		if operand == OperandAddr {
			return true
		}
	}
	return false
}

// Equal compares instructions field by field, immediates structurally.
func (o Op) Equal(other Op) bool {
	if o.Code != other.Code || o.Target != other.Target || o.A != other.A ||
		o.B != other.B || o.N != other.N || o.Addr != other.Addr ||
		o.Name != other.Name || o.HasTarget != other.HasTarget ||
		o.ReturnOld != other.ReturnOld {
		return false
	}
	if (o.Value == nil) != (other.Value == nil) {
		return false
	}
	return o.Value == nil || Identical(o.Value, other.Value)
}
