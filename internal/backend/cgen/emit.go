package cgen

import (
	"fmt"
	"strings"

	"ferroc/internal/mir"
	"ferroc/internal/types"
)

// CUnit is one emitted compilation unit: self-contained C text plus the
// functions that failed to lower. A failure never poisons its siblings.
type CUnit struct {
	Name     string
	Text     string
	Failures []FuncFailure
}

// structUse records the first use of an aggregate type within a unit.
type structUse struct {
	id   types.TypeID
	name string
}

// Emitter lowers one MIR module into one C compilation unit. All of its
// state is unit-local: the type-name cache, the emitted-helpers set and the
// struct/extern bookkeeping all reset with the next unit, which is what
// makes disjoint units safe to lower in parallel.
type Emitter struct {
	mod   *mir.Module
	types *types.Interner

	typeNames   map[types.TypeID]string
	needStdbool bool
	needStdlib  bool

	helpersEmitted map[helperKind]bool
	helperOrder    []helperKind

	structsSeen map[types.TypeID]bool
	structOrder []structUse

	unitFuncs  map[string]bool
	externSigs map[string]string
	externOrder []string
}

// NewEmitter prepares an emitter for one module and its type interner.
func NewEmitter(mod *mir.Module, typesIn *types.Interner) *Emitter {
	e := &Emitter{
		mod:            mod,
		types:          typesIn,
		typeNames:      make(map[types.TypeID]string),
		helpersEmitted: make(map[helperKind]bool),
		structsSeen:    make(map[types.TypeID]bool),
		unitFuncs:      make(map[string]bool),
		externSigs:     make(map[string]string),
	}
	if mod != nil {
		for _, f := range mod.Funcs {
			if f != nil {
				e.unitFuncs[sanitizeIdent(f.Name)] = true
			}
		}
	}
	return e
}

// useHelper records that a helper macro is required, once per unit.
func (e *Emitter) useHelper(k helperKind) {
	if e.helpersEmitted[k] {
		return
	}
	e.helpersEmitted[k] = true
	e.helperOrder = append(e.helperOrder, k)
}

// noteStructUse records an aggregate so its typedef lands in the unit.
func (e *Emitter) noteStructUse(id types.TypeID, name string) {
	if e.structsSeen[id] {
		return
	}
	e.structsSeen[id] = true
	e.structOrder = append(e.structOrder, structUse{id: id, name: name})
}

// noteExtern records a callee that is not defined in this unit. The
// prototype is derived from the first call site; later call sites with the
// same name reuse it.
func (e *Emitter) noteExtern(name, decl string) {
	if _, ok := e.externSigs[name]; ok {
		return
	}
	e.externSigs[name] = decl
	e.externOrder = append(e.externOrder, name)
}

// EmitUnit lowers a whole module. Function bodies are lowered first so
// helper-macro and include usage is known before the unit is assembled;
// the assembled order is fixed: header comment, includes, helper macros,
// aggregate typedefs, declarations, definitions.
func EmitUnit(mod *mir.Module, typesIn *types.Interner) (*CUnit, error) {
	if mod == nil || typesIn == nil {
		return nil, fmt.Errorf("nil module or interner")
	}
	e := NewEmitter(mod, typesIn)
	unit := &CUnit{Name: mod.Name}

	type funcText struct {
		decl string
		def  string
	}
	var lowered []funcText
	for _, f := range mod.Funcs {
		if f == nil {
			continue
		}
		decl, def, err := e.EmitFunction(f)
		if err != nil {
			unit.Failures = append(unit.Failures, FuncFailure{Func: f.Name, Err: err})
			// Sibling call sites may reference the name; keep a prototype
			// derived from the signature. If the signature itself cannot
			// be rendered, later call sites derive one.
			name := sanitizeIdent(f.Name)
			delete(e.unitFuncs, name)
			if proto, perr := e.funcDecl(f); perr == nil {
				e.noteExtern(name, proto)
			}
			continue
		}
		lowered = append(lowered, funcText{decl: decl, def: def})
	}

	structDefs, err := e.structDefs()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "/* unit: %s */\n", mod.Name)
	b.WriteString("#include <stdint.h>\n")
	if e.needStdbool {
		b.WriteString("#include <stdbool.h>\n")
	}
	if e.needStdlib {
		b.WriteString("#include <stdlib.h>\n")
	}
	for _, k := range e.helperOrder {
		b.WriteString("\n")
		b.WriteString(helperText(k))
	}
	if len(structDefs) > 0 {
		b.WriteString("\n")
		for _, def := range structDefs {
			b.WriteString(def)
		}
	}
	if len(lowered) > 0 || len(e.externOrder) > 0 {
		b.WriteString("\n")
		for _, name := range e.externOrder {
			b.WriteString(e.externSigs[name])
			b.WriteString("\n")
		}
		for _, ft := range lowered {
			b.WriteString(ft.decl)
			b.WriteString("\n")
		}
	}
	for _, ft := range lowered {
		b.WriteString("\n")
		b.WriteString(ft.def)
	}

	unit.Text = b.String()
	return unit, nil
}

// structDefs renders forward typedefs plus full definitions in dependency
// order, so an aggregate field's type is always complete before use.
// Pointer fields only need the forward typedef.
func (e *Emitter) structDefs() ([]string, error) {
	if len(e.structOrder) == 0 {
		return nil, nil
	}
	var defs []string
	emitted := make(map[types.TypeID]bool)
	var emitOne func(su structUse) error
	emitOne = func(su structUse) error {
		if emitted[su.id] {
			return nil
		}
		emitted[su.id] = true
		info, ok := e.types.StructInfo(su.id)
		if !ok {
			return &UnsupportedTypeError{Type: su.name}
		}
		var fields strings.Builder
		for _, fld := range info.Fields {
			// A by-value aggregate field must be fully defined first.
			if ft, ok := e.types.Lookup(fld.Type); ok && ft.Kind == types.KindStruct {
				name, err := e.typeName(fld.Type)
				if err != nil {
					return err
				}
				if err := emitOne(structUse{id: fld.Type, name: name}); err != nil {
					return err
				}
			}
			name, err := e.typeName(fld.Type)
			if err != nil {
				return err
			}
			fmt.Fprintf(&fields, "  %s %s;\n", name, sanitizeIdent(fld.Name))
		}
		if len(info.Fields) == 0 {
			// C requires at least one member.
			fields.WriteString("  uint8_t _pad;\n")
		}
		defs = append(defs, fmt.Sprintf("struct %s {\n%s};\n", su.name, fields.String()))
		return nil
	}
	// structOrder can grow while fields resolve new aggregates; index loop
	// on purpose.
	for i := 0; i < len(e.structOrder); i++ {
		if err := emitOne(e.structOrder[i]); err != nil {
			return nil, err
		}
	}
	// Forward typedefs for every aggregate, pointer fields included, then
	// the full definitions.
	var out []string
	for _, su := range e.structOrder {
		out = append(out, fmt.Sprintf("typedef struct %s %s;\n", su.name, su.name))
	}
	return append(out, defs...), nil
}
