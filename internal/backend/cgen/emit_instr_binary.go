package cgen

import (
	"fmt"

	"ferroc/internal/mir"
	"ferroc/internal/types"
)

func cBinOp(op mir.BinOp) string {
	switch op {
	case mir.BinAdd:
		return "+"
	case mir.BinSub:
		return "-"
	case mir.BinMul:
		return "*"
	case mir.BinDiv:
		return "/"
	case mir.BinRem:
		return "%"
	case mir.BinAnd:
		return "&"
	case mir.BinOr:
		return "|"
	case mir.BinXor:
		return "^"
	case mir.BinShl:
		return "<<"
	case mir.BinShr:
		return ">>"
	case mir.BinEq:
		return "=="
	case mir.BinNe:
		return "!="
	case mir.BinLt:
		return "<"
	case mir.BinLe:
		return "<="
	case mir.BinGt:
		return ">"
	case mir.BinGe:
		return ">="
	default:
		return "?"
	}
}

func (fe *funcEmitter) emitBinary(b *mir.BinaryOp) (string, error) {
	l, err := fe.emitOperand(&b.Left)
	if err != nil {
		return "", err
	}
	r, err := fe.emitOperand(&b.Right)
	if err != nil {
		return "", err
	}

	// Comparisons never overflow; they lower to the C operator for any
	// comparable operand type, including bool and pointers.
	if b.Op.IsComparison() {
		return fmt.Sprintf("(%s %s %s)", l, cBinOp(b.Op), r), nil
	}

	info, ok := lookupIntInfo(fe.e.types, b.Left.Type)
	if !ok {
		if t, found := fe.e.types.Lookup(b.Left.Type); found && t.Kind == types.KindBool {
			switch b.Op {
			case mir.BinAnd, mir.BinOr, mir.BinXor:
				return fmt.Sprintf("(%s %s %s)", l, cBinOp(b.Op), r), nil
			}
		}
		return "", &UnsupportedOperationError{
			Op:    b.Op.String(),
			Types: []string{types.Describe(fe.e.types, b.Left.Type)},
		}
	}

	switch b.Op {
	case mir.BinAdd, mir.BinSub, mir.BinMul:
		return fe.emitWrappingArith(info, l, cBinOp(b.Op), r), nil
	case mir.BinDiv, mir.BinRem:
		// Division by zero and MIN/-1 are guarded upstream; the lowered C
		// may assume both operands are in range.
		return fmt.Sprintf("(%s %s %s)", l, cBinOp(b.Op), r), nil
	case mir.BinAnd, mir.BinOr, mir.BinXor:
		return fmt.Sprintf("(%s %s %s)", l, cBinOp(b.Op), r), nil
	case mir.BinShl:
		return fe.emitShl(info, l, r), nil
	case mir.BinShr:
		// Masking keeps the shift amount in range; a plain >> is then
		// defined for unsigned operands and arithmetic for signed ones on
		// every target this backend cares about.
		return fmt.Sprintf("(%s >> (%s & %d))", l, r, info.bits-1), nil
	default:
		return "", &UnsupportedOperationError{Op: b.Op.String()}
	}
}

// unsignedExpr computes `l op r` in the unsigned domain of info's width.
// Operands narrower than int are lifted through uint32_t first so the C
// integer promotions cannot smuggle the computation back into signed int,
// then the result is truncated to the operation width.
func unsignedExpr(info intInfo, l, op, r string) string {
	u := unsignedName(info.bits)
	if info.bits < 32 {
		lc, rc := l, r
		if info.signed {
			lc = fmt.Sprintf("(%s)%s", u, l)
			rc = fmt.Sprintf("(%s)%s", u, r)
		}
		return fmt.Sprintf("(%s)((uint32_t)%s %s (uint32_t)%s)", u, lc, op, rc)
	}
	return fmt.Sprintf("(%s)%s %s (%s)%s", u, l, op, u, r)
}

// emitWrappingArith lowers two's-complement wrapping add, sub and mul.
// Unsigned wrapping is native C; signed wrapping is computed in the
// unsigned domain and reinterpreted through the utos helper.
func (fe *funcEmitter) emitWrappingArith(info intInfo, l, op, r string) string {
	if !info.signed {
		if info.bits < 32 {
			return unsignedExpr(info, l, op, r)
		}
		return fmt.Sprintf("(%s %s %s)", l, op, r)
	}
	fe.e.useHelper(helperUtoS)
	return fmt.Sprintf("__ferro_utos(%s, %s, %s, %s)",
		unsignedName(info.bits), signedName(info.bits),
		unsignedExpr(info, l, op, r), signedMaxName(info.bits))
}

// emitShl lowers a left shift. The amount is masked to the operand width;
// a signed left shift is performed in the unsigned domain since shifting
// into the sign bit is undefined for signed C operands.
func (fe *funcEmitter) emitShl(info intInfo, l, r string) string {
	amount := fmt.Sprintf("(%s & %d)", r, info.bits-1)
	u := unsignedName(info.bits)
	var body string
	if info.bits < 32 {
		body = fmt.Sprintf("(%s)((uint32_t)(%s)%s << %s)", u, u, l, amount)
	} else {
		body = fmt.Sprintf("(%s)%s << %s", u, l, amount)
	}
	if !info.signed {
		if info.bits < 32 {
			return body
		}
		return fmt.Sprintf("(%s << %s)", l, amount)
	}
	fe.e.useHelper(helperUtoS)
	return fmt.Sprintf("__ferro_utos(%s, %s, %s, %s)",
		u, signedName(info.bits), body, signedMaxName(info.bits))
}

func (fe *funcEmitter) emitUnary(u *mir.UnaryOp) (string, error) {
	val, err := fe.emitOperand(&u.Operand)
	if err != nil {
		return "", err
	}
	switch u.Op {
	case mir.UnDeref:
		return fmt.Sprintf("(*%s)", val), nil
	case mir.UnNot:
		if t, found := fe.e.types.Lookup(u.Operand.Type); found && t.Kind == types.KindBool {
			return fmt.Sprintf("(!%s)", val), nil
		}
		if _, ok := lookupIntInfo(fe.e.types, u.Operand.Type); !ok {
			return "", &UnsupportedOperationError{
				Op:    u.Op.String(),
				Types: []string{types.Describe(fe.e.types, u.Operand.Type)},
			}
		}
		return fmt.Sprintf("(~%s)", val), nil
	case mir.UnNeg:
		info, ok := lookupIntInfo(fe.e.types, u.Operand.Type)
		if !ok {
			return "", &UnsupportedOperationError{
				Op:    u.Op.String(),
				Types: []string{types.Describe(fe.e.types, u.Operand.Type)},
			}
		}
		// Wrapping negation is 0 - x, which reuses the arithmetic rules.
		return fe.emitWrappingArith(info, "0", "-", val), nil
	default:
		return "", &UnsupportedOperationError{Op: u.Op.String()}
	}
}
