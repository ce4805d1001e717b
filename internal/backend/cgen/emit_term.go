package cgen

import (
	"fmt"

	"ferroc/internal/mir"
)

func (fe *funcEmitter) emitTerminator(blockIdx int, t *mir.Terminator) error {
	switch t.Kind {
	case mir.TermReturn:
		return fe.emitReturn(&t.Return)
	case mir.TermGoto:
		fmt.Fprintf(&fe.buf, "  goto bb%d;\n", t.Goto.Target)
		return nil
	case mir.TermIf:
		cond, err := fe.emitOperand(&t.If.Cond)
		if err != nil {
			return err
		}
		fmt.Fprintf(&fe.buf, "  if (%s) goto bb%d;\n", cond, t.If.Then)
		fmt.Fprintf(&fe.buf, "  goto bb%d;\n", t.If.Else)
		return nil
	case mir.TermUnreachable:
		// Reaching this point means the front end's invariants were
		// violated at runtime; aborting is the only honest response.
		fe.e.needStdlib = true
		fe.buf.WriteString("  abort();\n")
		return nil
	case mir.TermNone:
		return &MalformedIRError{Block: blockIdx, Instr: -1, Msg: "block has no terminator"}
	default:
		return &UnsupportedOperationError{Op: fmt.Sprintf("terminator kind %d", t.Kind)}
	}
}

func (fe *funcEmitter) emitReturn(ret *mir.ReturnTerm) error {
	if !ret.HasValue {
		fe.buf.WriteString("  return;\n")
		return nil
	}
	if ret.Value.Kind == mir.OperandConst && ret.Value.Const.Kind == mir.ConstUnit {
		fe.buf.WriteString("  return;\n")
		return nil
	}
	if ret.Value.Kind == mir.OperandLocal && fe.isUnitLocal(ret.Value.Local) {
		fe.buf.WriteString("  return;\n")
		return nil
	}
	val, err := fe.emitOperand(&ret.Value)
	if err != nil {
		return err
	}
	fmt.Fprintf(&fe.buf, "  return %s;\n", val)
	return nil
}
