package mir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermGoto
	TermIf
	TermUnreachable
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermReturn:
		return "return"
	case TermGoto:
		return "goto"
	case TermIf:
		return "if"
	case TermUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

type Terminator struct {
	Kind TermKind

	Return ReturnTerm
	Goto   GotoTerm
	If     IfTerm
}

type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

type GotoTerm struct {
	Target BlockID
}

type IfTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}
