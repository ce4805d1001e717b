package cgen

import (
	"fmt"

	"ferroc/internal/types"
)

// intInfo captures the two properties every integer lowering rule keys on.
type intInfo struct {
	bits   int
	signed bool
}

func lookupIntInfo(typesIn *types.Interner, id types.TypeID) (intInfo, bool) {
	t, ok := typesIn.Lookup(id)
	if !ok {
		return intInfo{}, false
	}
	switch t.Kind {
	case types.KindInt:
		return intInfo{bits: int(t.Width), signed: true}, true
	case types.KindUint:
		return intInfo{bits: int(t.Width), signed: false}, true
	default:
		return intInfo{}, false
	}
}

// signedName returns the stdint name of the signed type of the given width.
func signedName(bits int) string {
	return fmt.Sprintf("int%d_t", bits)
}

// unsignedName returns the stdint name of the unsigned type of the given width.
func unsignedName(bits int) string {
	return fmt.Sprintf("uint%d_t", bits)
}

// signedMaxName returns the stdint maximum macro for the signed width.
func signedMaxName(bits int) string {
	return fmt.Sprintf("INT%d_MAX", bits)
}

// signedMinName returns the stdint minimum macro for the signed width.
func signedMinName(bits int) string {
	return fmt.Sprintf("INT%d_MIN", bits)
}

func (in intInfo) cName() string {
	if in.signed {
		return signedName(in.bits)
	}
	return unsignedName(in.bits)
}

// typeName maps an IR type to its canonical C spelling. Pure and total over
// the supported kinds; the per-unit cache in the emitter guarantees that a
// recurring TypeID always produces byte-identical text within one unit.
func (e *Emitter) typeName(id types.TypeID) (string, error) {
	if name, ok := e.typeNames[id]; ok {
		return name, nil
	}
	name, err := e.typeNameUncached(id)
	if err != nil {
		return "", err
	}
	e.typeNames[id] = name
	return name, nil
}

func (e *Emitter) typeNameUncached(id types.TypeID) (string, error) {
	t, ok := e.types.Lookup(id)
	if !ok {
		return "", &UnsupportedTypeError{Type: fmt.Sprintf("type#%d", id)}
	}
	switch t.Kind {
	case types.KindBool:
		e.needStdbool = true
		return "bool", nil
	case types.KindInt:
		if !t.Width.Valid() {
			return "", &UnsupportedTypeError{Type: types.Describe(e.types, id)}
		}
		return signedName(int(t.Width)), nil
	case types.KindUint:
		if !t.Width.Valid() {
			return "", &UnsupportedTypeError{Type: types.Describe(e.types, id)}
		}
		return unsignedName(int(t.Width)), nil
	case types.KindPointer:
		elem, err := e.typeName(t.Elem)
		if err != nil {
			return "", err
		}
		return elem + "*", nil
	case types.KindStruct:
		info, ok := e.types.StructInfo(id)
		if !ok {
			return "", &UnsupportedTypeError{Type: types.Describe(e.types, id)}
		}
		name := sanitizeIdent(info.Name)
		e.noteStructUse(id, name)
		return name, nil
	default:
		// unit and never have no value representation; they are handled
		// where they may legally appear (results, bare returns).
		return "", &UnsupportedTypeError{Type: types.Describe(e.types, id)}
	}
}

// resultTypeName maps a function result type, where unit and never both
// lower to void.
func (e *Emitter) resultTypeName(id types.TypeID) (string, error) {
	if id == types.NoTypeID {
		return "void", nil
	}
	t, ok := e.types.Lookup(id)
	if ok && (t.Kind == types.KindUnit || t.Kind == types.KindNever) {
		return "void", nil
	}
	return e.typeName(id)
}

// cReservedWords is the set of identifiers that cannot be used verbatim for
// struct or field names in the emitted C.
var cReservedWords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true,
	"else": true, "enum": true, "extern": true, "float": true, "for": true,
	"goto": true, "if": true, "inline": true, "int": true, "long": true,
	"register": true, "restrict": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "struct": true,
	"switch": true, "typedef": true, "union": true, "unsigned": true,
	"void": true, "volatile": true, "while": true, "bool": true,
}

// sanitizeIdent mangles identifiers that collide with C reserved words.
// The mangling is deterministic: the same input always yields the same
// output, which is all the name-stability invariant requires.
func sanitizeIdent(name string) string {
	if cReservedWords[name] {
		return name + "_"
	}
	return name
}
