package vm

import (
	"errors"
	"fmt"
	"io"
)

// CurrentVersion is stamped on every new program and required on decode.
const CurrentVersion uint8 = 1

// Program is read-only once built; any number of interpreters may run the
// same Program at once.
type Program struct {
	Version      uint8
	Constants    []Value
	Instructions []Op
}

func NewProgram(instructions []Op, constants []Value) *Program {
	return &Program{
		Version:      CurrentVersion,
		Constants:    constants,
		Instructions: instructions,
	}
}

func FromInstructions(instructions ...Op) *Program {
	return NewProgram(instructions, nil)
}

var ErrEndOfCode = errors.New("End of code block")

func (p *Program) GetInstruction(pc int) (Op, error) {
	if pc < 0 || pc >= len(p.Instructions) {
		return Op{}, ErrEndOfCode
	}
	return p.Instructions[pc], nil
}

func (p *Program) Len() int {
	return len(p.Instructions)
}

// Equal is structural equality of version, constants and instructions.
func (p *Program) Equal(other *Program) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Version != other.Version ||
		len(p.Constants) != len(other.Constants) ||
		len(p.Instructions) != len(other.Instructions) {
		return false
	}
	for i := range p.Constants {
		if !Identical(p.Constants[i], other.Constants[i]) {
			return false
		}
	}
	for i := range p.Instructions {
		if !p.Instructions[i].Equal(other.Instructions[i]) {
			return false
		}
	}
	return true
}

// DebugPrint writes a disassembly listing.
func (p *Program) DebugPrint(w io.Writer) {
	fmt.Fprintf(w, "version %d\n", p.Version)
	if len(p.Constants) != 0 {
		fmt.Fprintln(w, "*** constants")
		for i, c := range p.Constants {
			fmt.Fprintf(w, "  k%03d: %s\n", i, Describe(c))
		}
	}
	fmt.Fprintln(w, "*** code")
	for i, op := range p.Instructions {
		fmt.Fprintf(w, "  %03d: %s\n", i, op)
	}
}
