package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodeNames(t *testing.T) {
	ops := Opcodes()
	require.NotEmpty(t, ops)
	assert.Equal(t, NOP, ops[0])
	for _, o := range ops {
		got, ok := ParseOpcode(o.String())
		require.True(t, ok, o.String())
		assert.Equal(t, o, got)
		assert.NotNil(t, o.Shape(), o.String())
	}
	_, ok := ParseOpcode("FROB")
	assert.False(t, ok)
	assert.False(t, OpcodeMax.Valid())
	assert.Equal(t, "Opcode(4000)", Opcode(4000).String())
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{Halt(), "HALT"},
		{LoadV(1, IntValue(3)), "LOADV r1, Int(3)"},
		{Add(0, 1, 2), "ADD r0, r1, r2"},
		{IndexN(0, 1, 4), "INDEXN r0, r1, #4"},
		{Jz(2, 7), "JZ r2, @7"},
		{Store(0, "x"), "STORE r0, $x"},
		{Inc("x"), "INC $x"},
		{IncInto("x", 3, true), "INC $x, r3, old"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestGetInstruction(t *testing.T) {
	p := FromInstructions(Halt())
	op, err := p.GetInstruction(0)
	require.NoError(t, err)
	assert.Equal(t, HALT, op.Code)

	_, err = p.GetInstruction(1)
	require.ErrorIs(t, err, ErrEndOfCode)
	_, err = p.GetInstruction(-1)
	require.ErrorIs(t, err, ErrEndOfCode)
}

func TestProgramEqual(t *testing.T) {
	a := NewProgram([]Op{LoadV(0, NewArray(IntValue(1)))}, []Value{StrValue("k")})
	b := NewProgram([]Op{LoadV(0, NewArray(IntValue(1)))}, []Value{StrValue("k")})
	assert.True(t, a.Equal(b))

	b.Instructions[0].Value.(*ArrayValue).Push(Null)
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

func TestVerify(t *testing.T) {
	good := FromInstructions(
		LoadV(0, IntValue(1)),
		Jnz(0, 0),
		IncInto("x", 1, false),
		Halt(),
	)
	require.NoError(t, good.Verify(2))

	bad := FromInstructions(
		Add(0, 1, 5),
		Jmp(9),
		IndexN(0, 0, -1),
		Op{Code: LOADV, Target: 0},
		Load(0, ""),
		Op{Code: OpcodeMax},
	)
	err := bad.Verify(2)
	require.ErrorIs(t, err, ErrInvalidProgram)
	for _, want := range []string{
		"000: ADD r0, r1, r5: register r5 outside r0..r1",
		"001: JMP @9: address outside 0..5",
		"002: INDEXN r0, r0, #-1: negative index",
		"003: LOADV r0, Null: missing immediate",
		"004: LOAD r0, $: empty variable name",
		"005: unknown opcode",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDebugPrint(t *testing.T) {
	var buf bytes.Buffer
	NewProgram([]Op{PrintK(StrValue("hi")), Halt()}, []Value{IntValue(2)}).DebugPrint(&buf)
	assert.Equal(t, "version 1\n"+
		"*** constants\n"+
		"  k000: Int(2)\n"+
		"*** code\n"+
		"  000: PRINTK String(\"hi\")\n"+
		"  001: HALT\n", buf.String())
}
