package types

import (
	"fmt"

	"fortio.org/safecast"
)

// StructID indexes registered aggregate types inside one interner.
type StructID uint32

// NoStructID marks the absence of an aggregate.
const NoStructID StructID = 0

// Field is one named member of an aggregate, in declaration order.
type Field struct {
	Name string
	Type TypeID
}

// StructInfo describes a registered aggregate type.
type StructInfo struct {
	Name   string
	Fields []Field
}

// RegisterStruct interns a nominal aggregate type. Registering the same name
// twice returns the previously interned TypeID; the fields of the first
// registration win. Field types must already be interned.
func (in *Interner) RegisterStruct(name string, fields []Field) TypeID {
	for sid := 1; sid < len(in.structs); sid++ {
		if in.structs[sid].Name == name {
			return in.Intern(Type{Kind: KindStruct, Struct: StructID(sid)})
		}
	}
	lenStructs, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("len(structs) overflow: %w", err))
	}
	sid := StructID(lenStructs)
	in.structs = append(in.structs, StructInfo{Name: name, Fields: append([]Field(nil), fields...)})
	return in.Intern(Type{Kind: KindStruct, Struct: sid})
}

// DefineStructFields fills in the fields of an already registered aggregate.
// The codec registers struct names first and attaches fields once the whole
// type table is known, so recursive aggregates (a struct holding a pointer
// to itself) decode cleanly.
func (in *Interner) DefineStructFields(id TypeID, fields []Field) error {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindStruct {
		return fmt.Errorf("type %d is not a struct", id)
	}
	if t.Struct == NoStructID || int(t.Struct) >= len(in.structs) {
		return fmt.Errorf("struct id %d out of range", t.Struct)
	}
	in.structs[t.Struct].Fields = append([]Field(nil), fields...)
	return nil
}

// StructInfo returns the aggregate description behind a struct TypeID.
func (in *Interner) StructInfo(id TypeID) (StructInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindStruct {
		return StructInfo{}, false
	}
	if t.Struct == NoStructID || int(t.Struct) >= len(in.structs) {
		return StructInfo{}, false
	}
	return in.structs[t.Struct], true
}

// Structs returns the registered aggregates in registration order.
func (in *Interner) Structs() []StructInfo {
	if len(in.structs) <= 1 {
		return nil
	}
	return in.structs[1:]
}
