package types

import "fmt"

// Describe renders a TypeID in surface syntax (i32, u8, *u8, Point).
// Used by diagnostics and the IR dumper; not part of the emitted C.
func Describe(in *Interner, id TypeID) string {
	if id == NoTypeID {
		return "<none>"
	}
	if in == nil {
		return fmt.Sprintf("type#%d", id)
	}
	t, ok := in.Lookup(id)
	if !ok {
		return fmt.Sprintf("type#%d", id)
	}
	switch t.Kind {
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindInt:
		return fmt.Sprintf("i%d", t.Width)
	case KindUint:
		return fmt.Sprintf("u%d", t.Width)
	case KindPointer:
		return "*" + Describe(in, t.Elem)
	case KindStruct:
		if info, ok := in.StructInfo(id); ok {
			return info.Name
		}
		return "struct#?"
	default:
		return t.Kind.String()
	}
}
