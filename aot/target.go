package aot

import (
	"errors"
	"fmt"
	"strings"
)

// Target selects the calling convention used for calls into the C runtime.
type Target int

const (
	Win64 Target = iota
	SysV
)

var ErrUnknownTarget = errors.New("unknown target")

func (t Target) String() string {
	switch t {
	case Win64:
		return "win64"
	case SysV:
		return "sysv"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "", "win64", "windows":
		return Win64, nil
	case "sysv", "linux", "elf64":
		return SysV, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// callConv describes how to call printf(fmt, value).
type callConv struct {
	fmtArg   string
	valueArg string
	// shadow is the stack reservation made around the call when no
	// registers are pushed; it keeps rsp 16-byte aligned at the call.
	shadow int
	// varargs is set when al must carry the number of vector registers.
	varargs bool
	callee  string
}

func (t Target) conv() callConv {
	if t == SysV {
		return callConv{fmtArg: "rdi", valueArg: "rsi", shadow: 8, varargs: true, callee: "printf wrt ..plt"}
	}
	return callConv{fmtArg: "rcx", valueArg: "rdx", shadow: 40, callee: "printf"}
}

// reserve returns the stack adjustment needed once pushed registers have
// been pushed.
func (c callConv) reserve(pushed int) int {
	if pushed%2 == 1 {
		return c.shadow - 8
	}
	return c.shadow
}
