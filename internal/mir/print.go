package mir

import (
	"fmt"
	"io"

	"ferroc/internal/types"
)

// DumpOptions configures MIR module dumping.
type DumpOptions struct{}

// DumpModule writes a human-readable representation of a MIR module.
// Output is deterministic; it is what `ferroc dump` prints and is meant
// for humans and golden tests, not for machine consumption.
func DumpModule(w io.Writer, m *Module, typesIn *types.Interner, _ DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	fmt.Fprintf(w, "module %s\n", m.Name)
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := dumpFunc(w, f, typesIn); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, typesIn *types.Interner) error {
	fmt.Fprintf(w, "\nfn %s(", f.Name)
	for i := 0; i < f.NumParams; i++ {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "_%d: %s", i, types.Describe(typesIn, f.Locals[i].Type))
	}
	fmt.Fprintf(w, ") -> %s {\n", types.Describe(typesIn, f.Result))
	for i := f.NumParams; i < len(f.Locals); i++ {
		fmt.Fprintf(w, "  let _%d: %s\n", i, types.Describe(typesIn, f.Locals[i].Type))
	}
	for bi := range f.Blocks {
		b := &f.Blocks[bi]
		fmt.Fprintf(w, "  bb%d:\n", bi)
		for ii := range b.Instrs {
			fmt.Fprintf(w, "    %s\n", instrStr(&b.Instrs[ii], typesIn))
		}
		fmt.Fprintf(w, "    %s\n", termStr(&b.Term))
	}
	_, err := fmt.Fprint(w, "}\n")
	return err
}

func instrStr(ins *Instr, typesIn *types.Interner) string {
	switch ins.Kind {
	case InstrAssign:
		return fmt.Sprintf("_%d = %s", ins.Assign.Dst, rvalueStr(&ins.Assign.Src, typesIn))
	case InstrCall:
		args := ""
		for i := range ins.Call.Args {
			if i > 0 {
				args += ", "
			}
			args += operandStr(&ins.Call.Args[i])
		}
		if ins.Call.HasDst {
			return fmt.Sprintf("_%d = call %s(%s)", ins.Call.Dst, ins.Call.Callee, args)
		}
		return fmt.Sprintf("call %s(%s)", ins.Call.Callee, args)
	case InstrNop:
		return "nop"
	default:
		return "<?>"
	}
}

func rvalueStr(rv *RValue, typesIn *types.Interner) string {
	switch rv.Kind {
	case RValueUse:
		return operandStr(&rv.Use)
	case RValueUnaryOp:
		return fmt.Sprintf("%s %s", rv.Unary.Op, operandStr(&rv.Unary.Operand))
	case RValueBinaryOp:
		return fmt.Sprintf("%s(%s, %s)", rv.Binary.Op, operandStr(&rv.Binary.Left), operandStr(&rv.Binary.Right))
	case RValueCast:
		return fmt.Sprintf("%s as %s", operandStr(&rv.Cast.Value), types.Describe(typesIn, rv.Cast.TargetTy))
	case RValueField:
		return fmt.Sprintf("%s.%s", operandStr(&rv.Field.Object), rv.Field.FieldName)
	case RValueStructLit:
		s := types.Describe(typesIn, rv.StructLit.TypeID) + " {"
		for i := range rv.StructLit.Fields {
			if i > 0 {
				s += ","
			}
			fld := &rv.StructLit.Fields[i]
			s += fmt.Sprintf(" %s: %s", fld.Name, operandStr(&fld.Value))
		}
		return s + " }"
	default:
		return "<?>"
	}
}

func operandStr(op *Operand) string {
	switch op.Kind {
	case OperandConst:
		switch op.Const.Kind {
		case ConstInt:
			return fmt.Sprintf("const %d", op.Const.IntValue)
		case ConstUint:
			return fmt.Sprintf("const %d", op.Const.UintValue)
		case ConstBool:
			return fmt.Sprintf("const %t", op.Const.BoolValue)
		case ConstUnit:
			return "const ()"
		}
		return "const <?>"
	case OperandLocal:
		return fmt.Sprintf("_%d", op.Local)
	case OperandAddrOf:
		return fmt.Sprintf("&_%d", op.Local)
	default:
		return "<?>"
	}
}

func termStr(term *Terminator) string {
	switch term.Kind {
	case TermReturn:
		if term.Return.HasValue {
			return "return " + operandStr(&term.Return.Value)
		}
		return "return"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", term.Goto.Target)
	case TermIf:
		return fmt.Sprintf("if %s then bb%d else bb%d", operandStr(&term.If.Cond), term.If.Then, term.If.Else)
	case TermUnreachable:
		return "unreachable"
	case TermNone:
		return "<unterminated>"
	default:
		return "<?>"
	}
}
