package vm

import "fmt"

type Opcode uint32

// Operand fields are those of Op. Opcode numbers are part of the encoded
// program format: append new opcodes before OpcodeMax, never reorder.
const (
	NOP Opcode = iota

	LOADV // Target Value | Target = Value

	ADD  // Target A B | Target = A + B (numeric, or string concatenation)
	SUB  // Target A B | Target = A - B
	MUL  // Target A B | Target = A * B
	DIV  // Target A B | Target = A / B
	IDIV // Target A B | Target = floor(A / B)
	POW  // Target A B | Target = A ** B
	MOD  // Target A B | Target = A % B

	ADDK  // Target Value B | Target = Value + B
	SUBK  // Target Value B | Target = Value - B
	MULK  // Target Value B | Target = Value * B
	DIVK  // Target Value B | Target = Value / B
	IDIVK // Target Value B | Target = floor(Value / B)
	POWK  // Target Value B | Target = Value ** B
	MODK  // Target Value B | Target = Value % B

	NEGATE // Target A | Target = -A

	BAND  // Target A B | Target = A & B
	BOR   // Target A B | Target = A | B
	BXOR  // Target A B | Target = A ^ B
	BLSH  // Target A B | Target = A << B
	BRSH  // Target A B | Target = A >>> B (logical)
	BARSH // Target A B | Target = A >> B (arithmetic)
	BNOT  // Target A | Target = ^A

	AND           // Target A B | Target = truthy(A) && truthy(B)
	OR            // Target A B | Target = truthy(A) || truthy(B)
	ANDK          // Target Value B | Target = truthy(Value) && truthy(B)
	ORK           // Target Value B | Target = truthy(Value) || truthy(B)
	NOT           // Target A | Target = !truthy(A)
	NULL_COALESCE // Target A B | Target = A, or B when A is Null

	EQ  // Target A B | Target = A == B
	NEQ // Target A B | Target = A != B
	LT  // Target A B | Target = A < B
	LTE // Target A B | Target = A <= B
	GT  // Target A B | Target = A > B
	GTE // Target A B | Target = A >= B

	INC // Name [Target] ReturnOld | Name += 1, Target = old or new value
	DEC // Name [Target] ReturnOld | Name -= 1, Target = old or new value

	INDEX  // Target A B | Target = A[B]
	INDEXN // Target A N | Target = A[N]
	INDEXK // Target A Value | Target = A[Value]

	STORE_INDEX  // Target B A | Target[B] = A
	STORE_INDEXN // Target N A | Target[N] = A
	STORE_INDEXK // Target Value A | Target[Value] = A

	DELETE_INDEX  // Target B | Target[B] = Null
	DELETE_INDEXN // Target N | Target[N] = Null
	DELETE_INDEXK // Target Value | Target[Value] = Null

	NEW_ARRAY   // Target | Target = []
	NEW_OBJECT  // Target | Target = {}
	ARRAY_PUSH  // Target A | Target.push(A)
	ARRAY_PUSHK // Target Value | Target.push(Value)
	LEN         // Target A | Target = len(A)

	JMP  // Addr | pc = Addr
	JZ   // A Addr | pc = Addr if !truthy(A)
	JNZ  // A Addr | pc = Addr if truthy(A)
	JLT  // A B Addr | pc = Addr if A < B
	JLTE // A B Addr | pc = Addr if A <= B
	JGT  // A B Addr | pc = Addr if A > B
	JGTE // A B Addr | pc = Addr if A >= B
	JEQ  // A B Addr | pc = Addr if A == B
	JNEQ // A B Addr | pc = Addr if A != B

	STORE  // A Name | Name = A (aliases compound handles)
	STOREK // Name Value | Name = copy of Value
	LOAD   // Target Name | Target = Name (aliases compound handles)

	CALL   // Addr | push pc, pc = Addr
	RETURN // | pc = pop

	PRINT  // A | print A
	PRINTK // Value | print Value
	HALT   // | stop

	OpcodeMax
)

// Operand names one field of Op as it appears in an opcode's shape.
type Operand uint8

const (
	OperandTarget    Operand = iota // register written (or container mutated)
	OperandA                        // first register operand
	OperandB                        // second register operand
	OperandN                        // constant integer index
	OperandAddr                     // instruction address
	OperandName                     // variable name
	OperandValue                    // immediate value
	OperandOptTarget                // optional register written by INC/DEC
	OperandReturnOld                // INC/DEC prefix/postfix flag
)

func (o Operand) String() string {
	switch o {
	case OperandTarget:
		return "target"
	case OperandA:
		return "a"
	case OperandB:
		return "b"
	case OperandN:
		return "index"
	case OperandAddr:
		return "address"
	case OperandName:
		return "name"
	case OperandValue:
		return "value"
	case OperandOptTarget:
		return "target"
	case OperandReturnOld:
		return "returns_old"
	}
	return fmt.Sprintf("Operand(%d)", uint8(o))
}

type opInfo struct {
	name  string
	shape []Operand
}

var (
	shapeNone    = []Operand{}
	shapeT       = []Operand{OperandTarget}
	shapeA       = []Operand{OperandA}
	shapeV       = []Operand{OperandValue}
	shapeTV      = []Operand{OperandTarget, OperandValue}
	shapeTA      = []Operand{OperandTarget, OperandA}
	shapeTB      = []Operand{OperandTarget, OperandB}
	shapeTN      = []Operand{OperandTarget, OperandN}
	shapeTAB     = []Operand{OperandTarget, OperandA, OperandB}
	shapeTVB     = []Operand{OperandTarget, OperandValue, OperandB}
	shapeTAN     = []Operand{OperandTarget, OperandA, OperandN}
	shapeTAV     = []Operand{OperandTarget, OperandA, OperandValue}
	shapeTBA     = []Operand{OperandTarget, OperandB, OperandA}
	shapeTNA     = []Operand{OperandTarget, OperandN, OperandA}
	shapeTVA     = []Operand{OperandTarget, OperandValue, OperandA}
	shapeAddr    = []Operand{OperandAddr}
	shapeAAddr   = []Operand{OperandA, OperandAddr}
	shapeABAddr  = []Operand{OperandA, OperandB, OperandAddr}
	shapeAName   = []Operand{OperandA, OperandName}
	shapeNameV   = []Operand{OperandName, OperandValue}
	shapeTName   = []Operand{OperandTarget, OperandName}
	shapeCounter = []Operand{OperandName, OperandOptTarget, OperandReturnOld}
)

var opTable = [OpcodeMax]opInfo{
	NOP:           {"NOP", shapeNone},
	LOADV:         {"LOADV", shapeTV},
	ADD:           {"ADD", shapeTAB},
	SUB:           {"SUB", shapeTAB},
	MUL:           {"MUL", shapeTAB},
	DIV:           {"DIV", shapeTAB},
	IDIV:          {"IDIV", shapeTAB},
	POW:           {"POW", shapeTAB},
	MOD:           {"MOD", shapeTAB},
	ADDK:          {"ADDK", shapeTVB},
	SUBK:          {"SUBK", shapeTVB},
	MULK:          {"MULK", shapeTVB},
	DIVK:          {"DIVK", shapeTVB},
	IDIVK:         {"IDIVK", shapeTVB},
	POWK:          {"POWK", shapeTVB},
	MODK:          {"MODK", shapeTVB},
	NEGATE:        {"NEGATE", shapeTA},
	BAND:          {"BAND", shapeTAB},
	BOR:           {"BOR", shapeTAB},
	BXOR:          {"BXOR", shapeTAB},
	BLSH:          {"BLSH", shapeTAB},
	BRSH:          {"BRSH", shapeTAB},
	BARSH:         {"BARSH", shapeTAB},
	BNOT:          {"BNOT", shapeTA},
	AND:           {"AND", shapeTAB},
	OR:            {"OR", shapeTAB},
	ANDK:          {"ANDK", shapeTVB},
	ORK:           {"ORK", shapeTVB},
	NOT:           {"NOT", shapeTA},
	NULL_COALESCE: {"NULL_COALESCE", shapeTAB},
	EQ:            {"EQ", shapeTAB},
	NEQ:           {"NEQ", shapeTAB},
	LT:            {"LT", shapeTAB},
	LTE:           {"LTE", shapeTAB},
	GT:            {"GT", shapeTAB},
	GTE:           {"GTE", shapeTAB},
	INC:           {"INC", shapeCounter},
	DEC:           {"DEC", shapeCounter},
	INDEX:         {"INDEX", shapeTAB},
	INDEXN:        {"INDEXN", shapeTAN},
	INDEXK:        {"INDEXK", shapeTAV},
	STORE_INDEX:   {"STORE_INDEX", shapeTBA},
	STORE_INDEXN:  {"STORE_INDEXN", shapeTNA},
	STORE_INDEXK:  {"STORE_INDEXK", shapeTVA},
	DELETE_INDEX:  {"DELETE_INDEX", shapeTB},
	DELETE_INDEXN: {"DELETE_INDEXN", shapeTN},
	DELETE_INDEXK: {"DELETE_INDEXK", shapeTV},
	NEW_ARRAY:     {"NEW_ARRAY", shapeT},
	NEW_OBJECT:    {"NEW_OBJECT", shapeT},
	ARRAY_PUSH:    {"ARRAY_PUSH", shapeTA},
	ARRAY_PUSHK:   {"ARRAY_PUSHK", shapeTV},
	LEN:           {"LEN", shapeTA},
	JMP:           {"JMP", shapeAddr},
	JZ:            {"JZ", shapeAAddr},
	JNZ:           {"JNZ", shapeAAddr},
	JLT:           {"JLT", shapeABAddr},
	JLTE:          {"JLTE", shapeABAddr},
	JGT:           {"JGT", shapeABAddr},
	JGTE:          {"JGTE", shapeABAddr},
	JEQ:           {"JEQ", shapeABAddr},
	JNEQ:          {"JNEQ", shapeABAddr},
	STORE:         {"STORE", shapeAName},
	STOREK:        {"STOREK", shapeNameV},
	LOAD:          {"LOAD", shapeTName},
	CALL:          {"CALL", shapeAddr},
	RETURN:        {"RETURN", shapeNone},
	PRINT:         {"PRINT", shapeA},
	PRINTK:        {"PRINTK", shapeV},
	HALT:          {"HALT", shapeNone},
}

func (o Opcode) Valid() bool {
	return o < OpcodeMax && opTable[o].name != ""
}

func (o Opcode) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Opcode(%d)", uint32(o))
	}
	return opTable[o].name
}

// Shape lists the operands an opcode reads from Op, in the order they are
// written in disassembly and passed to builder scripts.
func (o Opcode) Shape() []Operand {
	if !o.Valid() {
		return nil
	}
	return opTable[o].shape
}

var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, OpcodeMax)
	for i := Opcode(0); i < OpcodeMax; i++ {
		if opTable[i].name != "" {
			m[opTable[i].name] = i
		}
	}
	return m
}()

func ParseOpcode(name string) (Opcode, bool) {
	o, ok := opcodesByName[name]
	return o, ok
}

// Opcodes returns every defined opcode in numeric order.
func Opcodes() []Opcode {
	out := make([]Opcode, 0, OpcodeMax)
	for i := Opcode(0); i < OpcodeMax; i++ {
		if opTable[i].name != "" {
			out = append(out, i)
		}
	}
	return out
}
