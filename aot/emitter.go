package aot

import (
	"fmt"
	"strings"
)

// CommentWidth is the column at which per-instruction annotations start.
const CommentWidth = 20

const tab = "  "

// Emitter accumulates NASM source text.
type Emitter struct {
	sb      strings.Builder
	indent  int
	comment string
}

// Annotate sets the comment appended to every following instruction line.
func (e *Emitter) Annotate(comment string) {
	e.comment = comment
}

func (e *Emitter) writeLine(format string, args ...any) {
	if format == "" {
		e.sb.WriteString("\n")
		return
	}
	e.sb.WriteString(strings.Repeat(tab, e.indent))
	fmt.Fprintf(&e.sb, format, args...)
	e.sb.WriteString("\n")
}

// Instr writes one instruction line, padded and annotated.
func (e *Emitter) Instr(mnemonic string, operands ...string) {
	text := mnemonic
	if len(operands) > 0 {
		text += " " + strings.Join(operands, ", ")
	}
	if e.comment != "" {
		if pad := CommentWidth - len(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		} else {
			text += " "
		}
		text += "; " + e.comment
	}
	e.writeLine("%s", text)
}

func (e *Emitter) Global(name string) { e.writeLine("global %s", name) }
func (e *Emitter) Extern(name string) { e.writeLine("extern %s", name) }
func (e *Emitter) Section(name string) { e.writeLine("section .%s", name) }
func (e *Emitter) Blank()              { e.writeLine("") }

// Data writes a raw directive line inside the current section.
func (e *Emitter) Data(format string, args ...any) {
	e.writeLine(format, args...)
}

// Label starts a labelled block; following lines are indented one level.
func (e *Emitter) Label(name string) {
	e.indent = 0
	e.writeLine("%s:", name)
	e.indent = 1
}

func (e *Emitter) String() string {
	return e.sb.String()
}
