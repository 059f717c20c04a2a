package vm

import "fmt"

// FaultKind enumerates everything that can abort a run.
type FaultKind int

const (
	RegisterOutOfBounds FaultKind = iota
	VariableNotFound
	ProgramCounterOutOfBounds
	CallStackEmpty
	AttemptToIndex
	InvalidIndexType
	OperandTypeMismatch
	BinaryTypeMismatch
)

func (k FaultKind) String() string {
	switch k {
	case RegisterOutOfBounds:
		return "RegisterOutOfBounds"
	case VariableNotFound:
		return "VariableNotFound"
	case ProgramCounterOutOfBounds:
		return "ProgramCounterOutOfBounds"
	case CallStackEmpty:
		return "CallStackEmpty"
	case AttemptToIndex:
		return "AttemptToIndex"
	case InvalidIndexType:
		return "InvalidIndexType"
	case OperandTypeMismatch:
		return "OperandTypeMismatch"
	case BinaryTypeMismatch:
		return "BinaryTypeMismatch"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(k))
	}
}

// Fault is a fatal execution error. Only the fields relevant to Kind are
// populated.
type Fault struct {
	Kind FaultKind

	Register int    // RegisterOutOfBounds
	Name     string // VariableNotFound
	Address  int    // ProgramCounterOutOfBounds
	Opcode   string // BinaryTypeMismatch
	Expected string // OperandTypeMismatch, BinaryTypeMismatch
	Actual   string // AttemptToIndex, InvalidIndexType, OperandTypeMismatch, BinaryTypeMismatch (left)
	ActualB  string // BinaryTypeMismatch (right)
}

func (f *Fault) Error() string {
	switch f.Kind {
	case RegisterOutOfBounds:
		return fmt.Sprintf("register %d out of bounds", f.Register)
	case VariableNotFound:
		return fmt.Sprintf("variable '%s' not found", f.Name)
	case ProgramCounterOutOfBounds:
		return fmt.Sprintf("program counter out of bounds: %d", f.Address)
	case CallStackEmpty:
		return "call stack is empty, cannot return"
	case AttemptToIndex:
		return fmt.Sprintf("attempt to index '%s'", f.Actual)
	case InvalidIndexType:
		return fmt.Sprintf("invalid index type, got '%s'", f.Actual)
	case OperandTypeMismatch:
		return fmt.Sprintf("expected type '%s', got '%s'", f.Expected, f.Actual)
	case BinaryTypeMismatch:
		return fmt.Sprintf("expected type '%s' for operands of '%s' operation, got '%s' %s '%s'",
			f.Expected, f.Opcode, f.Actual, f.Opcode, f.ActualB)
	}
	return f.Kind.String()
}

// Is matches faults by kind, so errors.Is(err, ErrCallStackEmpty) works for
// any CallStackEmpty fault regardless of payload.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	return ok && t.Kind == f.Kind
}

var (
	ErrRegisterOutOfBounds       = &Fault{Kind: RegisterOutOfBounds}
	ErrVariableNotFound          = &Fault{Kind: VariableNotFound}
	ErrProgramCounterOutOfBounds = &Fault{Kind: ProgramCounterOutOfBounds}
	ErrCallStackEmpty            = &Fault{Kind: CallStackEmpty}
	ErrAttemptToIndex            = &Fault{Kind: AttemptToIndex}
	ErrInvalidIndexType          = &Fault{Kind: InvalidIndexType}
	ErrOperandTypeMismatch       = &Fault{Kind: OperandTypeMismatch}
	ErrBinaryTypeMismatch        = &Fault{Kind: BinaryTypeMismatch}
)
