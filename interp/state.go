package interp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/timewinder-dev/regvm/vm"
)

// Interpreter is the mutable state of one execution of a Program. The
// Program itself is never written, so several interpreters may share it.
type Interpreter struct {
	PC        int
	Registers []vm.Value
	Variables map[string]vm.Value
	CallStack []Frame
	Program   *vm.Program
	Steps     int

	// Out receives PRINT and PRINTK output.
	Out io.Writer
}

func New(prog *vm.Program, registerCount int) *Interpreter {
	in := &Interpreter{
		Program: prog,
		Out:     os.Stdout,
	}
	in.Registers = make([]vm.Value, registerCount)
	in.Reset()
	return in
}

// Reset rewinds to the start of the program with Null registers, no
// variables and an empty call stack.
func (in *Interpreter) Reset() {
	in.PC = 0
	in.Steps = 0
	for i := range in.Registers {
		in.Registers[i] = vm.Null
	}
	in.Variables = make(map[string]vm.Value)
	in.CallStack = nil
}

// Register returns register i, or nil when i is outside the register file.
func (in *Interpreter) Register(i int) vm.Value {
	if i < 0 || i >= len(in.Registers) {
		return nil
	}
	return in.Registers[i]
}

func (in *Interpreter) Variable(name string) (vm.Value, bool) {
	v, ok := in.Variables[name]
	return v, ok
}

func (in *Interpreter) CallStackString() string {
	if len(in.CallStack) == 0 {
		return "(empty call stack)"
	}
	var sb strings.Builder
	sb.WriteString("call stack:\n")
	for i := len(in.CallStack) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "  frame %d: return address -> %d\n", len(in.CallStack)-1-i, in.CallStack[i].ReturnAddress)
	}
	return sb.String()
}

func (in *Interpreter) getRegister(i int) (vm.Value, error) {
	if i < 0 || i >= len(in.Registers) {
		return nil, &vm.Fault{Kind: vm.RegisterOutOfBounds, Register: i}
	}
	return in.Registers[i], nil
}

func (in *Interpreter) setRegister(i int, v vm.Value) error {
	if i < 0 || i >= len(in.Registers) {
		return &vm.Fault{Kind: vm.RegisterOutOfBounds, Register: i}
	}
	in.Registers[i] = v
	return nil
}

func (in *Interpreter) getRegisters(a, b int) (vm.Value, vm.Value, error) {
	av, err := in.getRegister(a)
	if err != nil {
		return nil, nil, err
	}
	bv, err := in.getRegister(b)
	if err != nil {
		return nil, nil, err
	}
	return av, bv, nil
}

func (in *Interpreter) lookupVar(name string) (vm.Value, error) {
	v, ok := in.Variables[name]
	if !ok {
		return nil, &vm.Fault{Kind: vm.VariableNotFound, Name: name}
	}
	return v, nil
}

// jump validates addr before moving the program counter.
func (in *Interpreter) jump(addr int) error {
	if addr < 0 || addr >= in.Program.Len() {
		return &vm.Fault{Kind: vm.ProgramCounterOutOfBounds, Address: addr}
	}
	in.PC = addr
	return nil
}
