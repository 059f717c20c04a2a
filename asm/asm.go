// Package asm builds programs from Starlark scripts.
//
// Every opcode is a predeclared builtin named after it whose parameters
// follow the opcode's operand shape, so
//
//	LOADV(0, 10)
//	STORE(0, "x")
//	label("loop")
//	INC("x", target=1)
//	JLT(1, 2, "loop")
//
// appends five instructions. Builtins return the address of the instruction
// they appended. label(name) names the next address and const(value)
// appends to the constant pool, returning its index. Jump operands take an
// address or a label name; labels are resolved once the script has run, so
// forward references work.
package asm

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/regvm/vm"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var (
	ErrUnknownLabel   = errors.New("unknown label")
	ErrDuplicateLabel = errors.New("duplicate label")
)

// LoadFile runs the builder script at path.
func LoadFile(path string) (*vm.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(path, src)
}

// Load runs a builder script. src may be a string, []byte or io.Reader.
func Load(name string, src any) (*vm.Program, error) {
	b := newBuilder()
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			log.Info().Str("script", name).Msg(msg)
		},
	}
	// Scripts may unroll with top-level for loops.
	opts := syntax.FileOptions{TopLevelControl: true}
	if _, err := starlark.ExecFileOptions(&opts, thread, name, src, b.predeclared()); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return nil, fmt.Errorf("%s: %s", name, evalErr.Backtrace())
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	prog, err := b.intoProgram()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	log.Debug().
		Str("script", name).
		Int("instructions", prog.Len()).
		Int("constants", len(prog.Constants)).
		Int("labels", len(b.labels)).
		Msg("asm: built program")
	return prog, nil
}
