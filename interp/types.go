package interp

import "fmt"

type StepResult int

const (
	ContinueStep StepResult = iota
	EndStep
)

func (s StepResult) String() string {
	switch s {
	case ContinueStep:
		return "Continue"
	case EndStep:
		return "End"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Frame is one CALL activation. The callee shares the caller's registers and
// variables; only the resume address is saved.
type Frame struct {
	ReturnAddress int
}
