package mir

// BinOp enumerates binary operations. Arithmetic ops carry wrapping
// semantics: overflow wraps to the two's-complement result. Checked
// arithmetic is desugared by the front end into a wrapping op plus an
// explicit overflow branch before MIR reaches this backend.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "add"
	case BinSub:
		return "sub"
	case BinMul:
		return "mul"
	case BinDiv:
		return "div"
	case BinRem:
		return "rem"
	case BinAnd:
		return "and"
	case BinOr:
		return "or"
	case BinXor:
		return "xor"
	case BinShl:
		return "shl"
	case BinShr:
		return "shr"
	case BinEq:
		return "eq"
	case BinNe:
		return "ne"
	case BinLt:
		return "lt"
	case BinLe:
		return "le"
	case BinGt:
		return "gt"
	case BinGe:
		return "ge"
	default:
		return "unknown"
	}
}

// IsComparison reports whether the op produces a bool.
func (op BinOp) IsComparison() bool {
	return op >= BinEq && op <= BinGe
}

// UnOp enumerates unary operations.
type UnOp uint8

const (
	// UnNeg is arithmetic negation (wrapping for the same reason as BinSub).
	UnNeg UnOp = iota
	// UnNot is logical not on bool, bitwise not on integers.
	UnNot
	// UnDeref reads through a pointer operand.
	UnDeref
)

func (op UnOp) String() string {
	switch op {
	case UnNeg:
		return "neg"
	case UnNot:
		return "not"
	case UnDeref:
		return "deref"
	default:
		return "unknown"
	}
}
