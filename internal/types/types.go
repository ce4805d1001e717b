package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNever
	KindBool
	KindInt
	KindUint
	KindPointer
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integer types.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Valid reports whether the width belongs to the supported set.
func (w Width) Valid() bool {
	switch w {
	case Width8, Width16, Width32, Width64:
		return true
	}
	return false
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind   Kind
	Elem   TypeID   // pointee for pointers
	Width  Width    // for integer primitives
	Struct StructID // for aggregates
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer of the given width.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakePointer describes a pointer to elem.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}
