package vm

// Instruction constructors, mostly for tests and hand-built programs.

func LoadV(target int, v Value) Op { return Op{Code: LOADV, Target: target, Value: v} }

// Binary builds a three-register instruction (arithmetic, bitwise, logical,
// comparison, NULL_COALESCE).
func Binary(code Opcode, target, a, b int) Op {
	return Op{Code: code, Target: target, A: a, B: b}
}

// BinaryK builds the immediate-left-operand variants (ADDK, ANDK, ...).
func BinaryK(code Opcode, target int, a Value, b int) Op {
	return Op{Code: code, Target: target, Value: a, B: b}
}

func Unary(code Opcode, target, a int) Op { return Op{Code: code, Target: target, A: a} }

func Add(target, a, b int) Op  { return Binary(ADD, target, a, b) }
func Sub(target, a, b int) Op  { return Binary(SUB, target, a, b) }
func Mul(target, a, b int) Op  { return Binary(MUL, target, a, b) }
func Div(target, a, b int) Op  { return Binary(DIV, target, a, b) }
func IDiv(target, a, b int) Op { return Binary(IDIV, target, a, b) }
func Pow(target, a, b int) Op  { return Binary(POW, target, a, b) }
func Mod(target, a, b int) Op  { return Binary(MOD, target, a, b) }

// Inc increments a variable without writing a register.
func Inc(name string) Op { return Op{Code: INC, Name: name} }
func Dec(name string) Op { return Op{Code: DEC, Name: name} }

// IncInto increments name and copies the new value (or the old one when
// returnsOld is set) into target.
func IncInto(name string, target int, returnsOld bool) Op {
	return Op{Code: INC, Name: name, Target: target, HasTarget: true, ReturnOld: returnsOld}
}

func DecInto(name string, target int, returnsOld bool) Op {
	return Op{Code: DEC, Name: name, Target: target, HasTarget: true, ReturnOld: returnsOld}
}

func Index(target, object, index int) Op {
	return Op{Code: INDEX, Target: target, A: object, B: index}
}

func IndexN(target, object, n int) Op {
	return Op{Code: INDEXN, Target: target, A: object, N: n}
}

func IndexK(target, object int, key Value) Op {
	return Op{Code: INDEXK, Target: target, A: object, Value: key}
}

func StoreIndex(object, index, source int) Op {
	return Op{Code: STORE_INDEX, Target: object, B: index, A: source}
}

func StoreIndexN(object, n, source int) Op {
	return Op{Code: STORE_INDEXN, Target: object, N: n, A: source}
}

func StoreIndexK(object int, key Value, source int) Op {
	return Op{Code: STORE_INDEXK, Target: object, Value: key, A: source}
}

func DeleteIndex(object, index int) Op { return Op{Code: DELETE_INDEX, Target: object, B: index} }
func DeleteIndexN(object, n int) Op    { return Op{Code: DELETE_INDEXN, Target: object, N: n} }
func DeleteIndexK(object int, key Value) Op {
	return Op{Code: DELETE_INDEXK, Target: object, Value: key}
}

func MakeArray(target int) Op           { return Op{Code: NEW_ARRAY, Target: target} }
func MakeObject(target int) Op          { return Op{Code: NEW_OBJECT, Target: target} }
func ArrayPush(target, source int) Op   { return Op{Code: ARRAY_PUSH, Target: target, A: source} }
func ArrayPushK(target int, v Value) Op { return Op{Code: ARRAY_PUSHK, Target: target, Value: v} }
func Len(target, source int) Op         { return Op{Code: LEN, Target: target, A: source} }
func Jmp(addr int) Op                   { return Op{Code: JMP, Addr: addr} }
func Jz(source, addr int) Op            { return Op{Code: JZ, A: source, Addr: addr} }
func Jnz(source, addr int) Op           { return Op{Code: JNZ, A: source, Addr: addr} }
func Store(source int, name string) Op  { return Op{Code: STORE, A: source, Name: name} }
func StoreK(name string, v Value) Op    { return Op{Code: STOREK, Name: name, Value: v} }
func Load(target int, name string) Op   { return Op{Code: LOAD, Target: target, Name: name} }
func Call(addr int) Op                  { return Op{Code: CALL, Addr: addr} }
func Return() Op                        { return Op{Code: RETURN} }
func Print(source int) Op               { return Op{Code: PRINT, A: source} }
func PrintK(v Value) Op                 { return Op{Code: PRINTK, Value: v} }
func Halt() Op                          { return Op{Code: HALT} }

// JumpIf builds the relational jumps (JLT, JEQ, ...).
func JumpIf(code Opcode, a, b, addr int) Op {
	return Op{Code: code, A: a, B: b, Addr: addr}
}
