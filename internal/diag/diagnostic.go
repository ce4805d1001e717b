package diag

import "fmt"

// Locus pins a diagnostic to a place inside the IR. The backend never sees
// source text, so positions are unit/function/block/instruction coordinates
// rather than file spans.
type Locus struct {
	Unit     string
	Function string
	Block    int
	Instr    int
}

// NoIndex marks an absent block/instruction coordinate.
const NoIndex = -1

func (l Locus) String() string {
	s := l.Unit
	if l.Function != "" {
		s += "/" + l.Function
	}
	if l.Block != NoIndex {
		s += fmt.Sprintf(":bb%d", l.Block)
		if l.Instr != NoIndex {
			s += fmt.Sprintf(":%d", l.Instr)
		}
	}
	return s
}

type Note struct {
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Locus
	Notes    []Note
}

func New(sev Severity, code Code, primary Locus, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Locus, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Msg: msg})
	return d
}
