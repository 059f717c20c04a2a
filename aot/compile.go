// Package aot lowers a small subset of the instruction set to x86-64 NASM
// source that calls printf for output.
//
// Virtual registers map directly onto rax, rcx and rdx; programs that name
// a higher register are rejected.
package aot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/regvm/vm"
)

var (
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
	ErrUnsupportedImmediate   = errors.New("only Int immediates are supported")
)

type compiler struct {
	e      Emitter
	regs   RegAlloc
	target Target
	conv   callConv
}

// Compile returns NASM source for prog. The first instruction that cannot
// be lowered aborts compilation.
func Compile(prog *vm.Program, target Target) (string, error) {
	c := &compiler{target: target, conv: target.conv()}
	c.header()

	halted := false
	for pc, op := range prog.Instructions {
		c.e.Annotate(op.String())
		if err := c.lower(op); err != nil {
			return "", fmt.Errorf("%03d: %s: %w", pc, op, err)
		}
		halted = op.Code == vm.HALT
	}
	if !halted {
		c.e.Annotate("")
		c.exit()
	}

	out := c.e.String()
	log.Debug().
		Str("target", target.String()).
		Int("instructions", prog.Len()).
		Int("bytes", len(out)).
		Msg("aot: compiled program")
	return out, nil
}

func (c *compiler) header() {
	c.e.Global("main")
	c.e.Extern("printf")
	c.e.Blank()
	c.e.Section("data")
	c.e.Data(`fmt db "%%d", 10, 0`)
	c.e.Blank()
	c.e.Section("text")
	c.e.Label("main")
}

func (c *compiler) lower(op vm.Op) error {
	switch op.Code {
	case vm.NOP:
		return nil
	case vm.LOADV:
		return c.loadImmediate(op.Target, op.Value)
	case vm.ADD:
		return c.add(op.Target, op.A, op.B)
	case vm.PRINT:
		return c.print(op.A)
	case vm.PRINTK:
		vreg, err := c.regs.AllocNew()
		if err != nil {
			return err
		}
		if err := c.loadImmediate(vreg, op.Value); err != nil {
			return err
		}
		return c.print(vreg)
	case vm.HALT:
		c.exit()
		return nil
	}
	return ErrUnsupportedInstruction
}

func (c *compiler) loadImmediate(vreg int, v vm.Value) error {
	n, ok := v.(vm.IntValue)
	if !ok {
		return fmt.Errorf("%w, got %s", ErrUnsupportedImmediate, vm.Describe(v))
	}
	reg, err := c.regs.Alloc(vreg)
	if err != nil {
		return err
	}
	c.e.Instr("mov", reg, strconv.Itoa(int(n)))
	return nil
}

func (c *compiler) add(target, a, b int) error {
	ra, err := Physical(a)
	if err != nil {
		return err
	}
	rb, err := Physical(b)
	if err != nil {
		return err
	}
	rt, err := c.regs.Alloc(target)
	if err != nil {
		return err
	}
	if rt != ra {
		if rt == rb {
			// target aliases b: add into it directly
			c.e.Instr("add", rt, ra)
			return nil
		}
		c.e.Instr("mov", rt, ra)
	}
	c.e.Instr("add", rt, rb)
	return nil
}

// print calls printf on vreg and frees it. Registers still live below the
// mark are caller-saved in both conventions, so they are pushed around the
// call.
func (c *compiler) print(vreg int) error {
	reg, err := Physical(vreg)
	if err != nil {
		return err
	}
	c.regs.Free(vreg)

	var saved []string
	for _, v := range c.regs.Live() {
		if v == vreg {
			continue
		}
		r, _ := Physical(v)
		saved = append(saved, r)
	}
	for _, r := range saved {
		c.e.Instr("push", r)
	}
	reserve := c.conv.reserve(len(saved))
	if reserve > 0 {
		c.e.Instr("sub", "rsp", strconv.Itoa(reserve))
	}
	// The value goes into its argument register before the format pointer
	// so that rcx is read before lea overwrites it.
	if reg != c.conv.valueArg {
		c.e.Instr("mov", c.conv.valueArg, reg)
	}
	c.e.Instr("lea", c.conv.fmtArg, "[rel fmt]")
	if c.conv.varargs {
		c.e.Instr("xor", "eax", "eax")
	}
	c.e.Instr("call", c.conv.callee)
	if reserve > 0 {
		c.e.Instr("add", "rsp", strconv.Itoa(reserve))
	}
	for i := len(saved) - 1; i >= 0; i-- {
		c.e.Instr("pop", saved[i])
	}
	return nil
}

func (c *compiler) exit() {
	c.e.Instr("xor", "eax", "eax")
	c.e.Instr("ret")
}
