package mir

import "ferroc/internal/types"

// InstrKind enumerates instruction kinds in MIR.
type InstrKind uint8

const (
	// InstrAssign represents an assignment instruction.
	InstrAssign InstrKind = iota
	// InstrCall represents a call instruction.
	InstrCall
	// InstrNop represents a no-op instruction.
	InstrNop
)

func (k InstrKind) String() string {
	switch k {
	case InstrAssign:
		return "assign"
	case InstrCall:
		return "call"
	case InstrNop:
		return "nop"
	default:
		return "unknown"
	}
}

// Instr represents a MIR instruction.
type Instr struct {
	Kind InstrKind

	Assign AssignInstr
	Call   CallInstr
}

// AssignInstr represents an assignment instruction.
type AssignInstr struct {
	Dst LocalID
	Src RValue
}

// CallInstr represents a direct function call instruction.
type CallInstr struct {
	HasDst bool
	Dst    LocalID
	Callee string
	Args   []Operand
}

// OperandKind distinguishes operand types.
type OperandKind uint8

const (
	// OperandConst represents an immediate constant operand.
	OperandConst OperandKind = iota
	// OperandLocal represents a read of a local slot.
	OperandLocal
	// OperandAddrOf represents taking the address of a local slot.
	OperandAddrOf
)

// Operand represents a MIR operand. Its Type is declared by the front end;
// the backend consumes types, it never infers them.
type Operand struct {
	Kind  OperandKind
	Type  types.TypeID
	Const Const
	Local LocalID
}

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	// ConstInt represents a signed integer constant.
	ConstInt ConstKind = iota
	// ConstUint represents an unsigned integer constant.
	ConstUint
	// ConstBool represents a boolean constant.
	ConstBool
	// ConstUnit represents the unit constant.
	ConstUnit
)

// Const represents a MIR constant.
type Const struct {
	Kind ConstKind

	IntValue  int64
	UintValue uint64
	BoolValue bool
}

// RValueKind distinguishes right-hand value kinds.
type RValueKind uint8

const (
	// RValueUse represents a use of a value.
	RValueUse RValueKind = iota
	// RValueUnaryOp represents a unary operation.
	RValueUnaryOp
	// RValueBinaryOp represents a binary operation.
	RValueBinaryOp
	// RValueCast represents a cast operation.
	RValueCast
	// RValueField represents a field access.
	RValueField
	// RValueStructLit represents a struct literal.
	RValueStructLit
)

func (k RValueKind) String() string {
	switch k {
	case RValueUse:
		return "use"
	case RValueUnaryOp:
		return "unary"
	case RValueBinaryOp:
		return "binary"
	case RValueCast:
		return "cast"
	case RValueField:
		return "field"
	case RValueStructLit:
		return "struct-lit"
	default:
		return "unknown"
	}
}

// RValue represents a right-hand value in MIR.
type RValue struct {
	Kind RValueKind

	Use       Operand
	Unary     UnaryOp
	Binary    BinaryOp
	Cast      CastOp
	Field     FieldAccess
	StructLit StructLit
}

// CastOp represents a cast operation. The target type is declared, never
// inferred: it must be derivable from the operation alone.
type CastOp struct {
	Value    Operand
	TargetTy types.TypeID
}

// FieldAccess represents a field read on an aggregate value.
type FieldAccess struct {
	Object    Operand
	FieldName string
	FieldIdx  int
}

// StructLitField represents a struct literal field.
type StructLitField struct {
	Name  string
	Value Operand
}

// StructLit represents a struct literal.
type StructLit struct {
	TypeID types.TypeID
	Fields []StructLitField
}

// UnaryOp represents a unary operation.
type UnaryOp struct {
	Op      UnOp
	Operand Operand
}

// BinaryOp represents a binary operation.
type BinaryOp struct {
	Op    BinOp
	Left  Operand
	Right Operand
}
