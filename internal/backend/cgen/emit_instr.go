package cgen

import (
	"fmt"
	"strings"

	"ferroc/internal/mir"
	"ferroc/internal/types"
)

func (fe *funcEmitter) emitInstr(blockIdx, instrIdx int, ins *mir.Instr) error {
	switch ins.Kind {
	case mir.InstrAssign:
		return fe.emitAssign(blockIdx, instrIdx, ins)
	case mir.InstrCall:
		return fe.emitCall(blockIdx, instrIdx, ins)
	case mir.InstrNop:
		return nil
	default:
		return &UnsupportedOperationError{Op: fmt.Sprintf("instruction %s", ins.Kind)}
	}
}

func (fe *funcEmitter) emitAssign(blockIdx, instrIdx int, ins *mir.Instr) error {
	dst := ins.Assign.Dst
	if dst < 0 || int(dst) >= len(fe.f.Locals) {
		return &MalformedIRError{Block: blockIdx, Instr: instrIdx, Msg: fmt.Sprintf("local %d out of range", dst)}
	}
	if fe.isUnitLocal(dst) {
		// Zero-sized assignment; nothing to emit.
		return nil
	}
	expr, err := fe.emitRValue(&ins.Assign.Src)
	if err != nil {
		return err
	}
	return fe.emitStore(dst, expr)
}

// emitStore writes `_n = expr;`, declaring the local in place when the
// function body allows declarations there.
func (fe *funcEmitter) emitStore(dst mir.LocalID, expr string) error {
	if fe.declared[dst] {
		fmt.Fprintf(&fe.buf, "  _%d = %s;\n", dst, expr)
		return nil
	}
	tn, err := fe.e.typeName(fe.f.Locals[dst].Type)
	if err != nil {
		return err
	}
	fmt.Fprintf(&fe.buf, "  %s _%d = %s;\n", tn, dst, expr)
	fe.declared[dst] = true
	return nil
}

func (fe *funcEmitter) emitCall(blockIdx, instrIdx int, ins *mir.Instr) error {
	call := &ins.Call
	name := sanitizeIdent(call.Callee)
	if name == "" {
		return &MalformedIRError{Block: blockIdx, Instr: instrIdx, Msg: "call without callee"}
	}

	args := make([]string, 0, len(call.Args))
	argTypes := make([]string, 0, len(call.Args))
	for ai := range call.Args {
		expr, err := fe.emitOperand(&call.Args[ai])
		if err != nil {
			return err
		}
		args = append(args, expr)
		tn, err := fe.e.typeName(call.Args[ai].Type)
		if err != nil {
			return err
		}
		argTypes = append(argTypes, tn)
	}

	// Callees outside this unit get a prototype derived from the call site.
	if !fe.e.unitFuncs[name] {
		ret := "void"
		if call.HasDst {
			var err error
			ret, err = fe.e.resultTypeName(fe.f.Locals[call.Dst].Type)
			if err != nil {
				return err
			}
		}
		fe.e.noteExtern(name, fmt.Sprintf("%s %s(%s);", ret, name, strings.Join(argTypes, ", ")))
	}

	expr := fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	if call.HasDst && !fe.isUnitLocal(call.Dst) {
		return fe.emitStore(call.Dst, expr)
	}
	fmt.Fprintf(&fe.buf, "  %s;\n", expr)
	return nil
}

func (fe *funcEmitter) emitRValue(rv *mir.RValue) (string, error) {
	switch rv.Kind {
	case mir.RValueUse:
		return fe.emitOperand(&rv.Use)
	case mir.RValueCast:
		return fe.emitCast(&rv.Cast)
	case mir.RValueBinaryOp:
		return fe.emitBinary(&rv.Binary)
	case mir.RValueUnaryOp:
		return fe.emitUnary(&rv.Unary)
	case mir.RValueField:
		return fe.emitFieldAccess(&rv.Field)
	case mir.RValueStructLit:
		return fe.emitStructLit(&rv.StructLit)
	default:
		return "", &UnsupportedOperationError{Op: fmt.Sprintf("rvalue %s", rv.Kind)}
	}
}

func (fe *funcEmitter) emitOperand(op *mir.Operand) (string, error) {
	switch op.Kind {
	case mir.OperandLocal:
		if op.Local < 0 || int(op.Local) >= len(fe.f.Locals) {
			return "", &MalformedIRError{Block: -1, Msg: fmt.Sprintf("local %d out of range", op.Local)}
		}
		return fmt.Sprintf("_%d", op.Local), nil
	case mir.OperandAddrOf:
		if op.Local < 0 || int(op.Local) >= len(fe.f.Locals) {
			return "", &MalformedIRError{Block: -1, Msg: fmt.Sprintf("local %d out of range", op.Local)}
		}
		return fmt.Sprintf("(&_%d)", op.Local), nil
	case mir.OperandConst:
		return fe.emitConst(op)
	default:
		return "", &UnsupportedOperationError{Op: fmt.Sprintf("operand kind %d", op.Kind)}
	}
}

// emitConst renders an immediate. Width boundaries use the stdint MIN/MAX
// and literal macros: a bare decimal for INT64_MIN would not even parse as
// a single token in C.
func (fe *funcEmitter) emitConst(op *mir.Operand) (string, error) {
	c := &op.Const
	switch c.Kind {
	case mir.ConstBool:
		fe.e.needStdbool = true
		if c.BoolValue {
			return "true", nil
		}
		return "false", nil
	case mir.ConstInt:
		info, ok := lookupIntInfo(fe.e.types, op.Type)
		if !ok || !info.signed {
			return "", &UnsupportedOperationError{Op: "signed constant", Types: []string{types.Describe(fe.e.types, op.Type)}}
		}
		if c.IntValue == minSigned(info.bits) {
			return signedMinName(info.bits), nil
		}
		if info.bits == 64 {
			return fmt.Sprintf("INT64_C(%d)", c.IntValue), nil
		}
		return fmt.Sprintf("%d", c.IntValue), nil
	case mir.ConstUint:
		info, ok := lookupIntInfo(fe.e.types, op.Type)
		if !ok || info.signed {
			return "", &UnsupportedOperationError{Op: "unsigned constant", Types: []string{types.Describe(fe.e.types, op.Type)}}
		}
		if info.bits == 64 {
			return fmt.Sprintf("UINT64_C(%d)", c.UintValue), nil
		}
		return fmt.Sprintf("%d", c.UintValue), nil
	case mir.ConstUnit:
		return "", &UnsupportedOperationError{Op: "unit constant in value position"}
	default:
		return "", &UnsupportedOperationError{Op: fmt.Sprintf("constant kind %d", c.Kind)}
	}
}

func minSigned(bits int) int64 {
	switch bits {
	case 8:
		return -1 << 7
	case 16:
		return -1 << 15
	case 32:
		return -1 << 31
	default:
		return -1 << 63
	}
}

func (fe *funcEmitter) emitFieldAccess(fa *mir.FieldAccess) (string, error) {
	obj, err := fe.emitOperand(&fa.Object)
	if err != nil {
		return "", err
	}
	sep := "."
	if t, ok := fe.e.types.Lookup(fa.Object.Type); ok && t.Kind == types.KindPointer {
		sep = "->"
	}
	return fmt.Sprintf("%s%s%s", obj, sep, sanitizeIdent(fa.FieldName)), nil
}

func (fe *funcEmitter) emitStructLit(lit *mir.StructLit) (string, error) {
	tn, err := fe.e.typeName(lit.TypeID)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(lit.Fields))
	for i := range lit.Fields {
		fld := &lit.Fields[i]
		val, err := fe.emitOperand(&fld.Value)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf(".%s = %s", sanitizeIdent(fld.Name), val))
	}
	return fmt.Sprintf("(%s){ %s }", tn, strings.Join(parts, ", ")), nil
}
