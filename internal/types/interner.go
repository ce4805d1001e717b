package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types every module uses.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Never   TypeID
	Bool    TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	U8      TypeID
	U16     TypeID
	U32     TypeID
	U64     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
//
// One interner is owned by exactly one compilation unit; the backend relies
// on that ownership for reproducible, unit-local type names (two lowerings
// of the same unit see identical IDs). It is not safe for concurrent use.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	structs  []StructInfo
}

type typeKey Type

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 32),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.I8 = in.Intern(MakeInt(Width8))
	in.builtins.I16 = in.Intern(MakeInt(Width16))
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.U8 = in.Intern(MakeUint(Width8))
	in.builtins.U16 = in.Intern(MakeUint(Width16))
	in.builtins.U32 = in.Intern(MakeUint(Width32))
	in.builtins.U64 = in.Intern(MakeUint(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes + 1)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) > len(in.types) {
		return Type{}, false
	}
	return in.types[id-1], true
}

// Len returns the number of interned descriptors.
func (in *Interner) Len() int {
	return len(in.types)
}
