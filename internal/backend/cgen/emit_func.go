package cgen

import (
	"fmt"
	"strings"

	"ferroc/internal/mir"
	"ferroc/internal/types"
)

// funcEmitter carries the per-function lowering state.
type funcEmitter struct {
	e *Emitter
	f *mir.Func

	buf strings.Builder

	// declared tracks which locals already have a C declaration. In
	// single-block functions locals are declared at their first
	// assignment; multi-block functions pre-declare everything because a
	// C99 label cannot prefix a declaration.
	declared   []bool
	multiBlock bool
}

// EmitFunction lowers one function to its forward declaration and full
// definition. Both share one signature; the declaration drops parameter
// names so the prototype matches what a header would carry.
func (e *Emitter) EmitFunction(f *mir.Func) (decl, def string, err error) {
	if f == nil {
		return "", "", &MalformedIRError{Block: -1, Msg: "nil function"}
	}
	if f.NumParams > len(f.Locals) {
		return "", "", &MalformedIRError{Block: -1, Msg: fmt.Sprintf("%d params but %d locals", f.NumParams, len(f.Locals))}
	}

	decl, err = e.funcDecl(f)
	if err != nil {
		return "", "", err
	}
	ret, err := e.resultTypeName(f.Result)
	if err != nil {
		return "", "", err
	}
	name := sanitizeIdent(f.Name)

	paramDecls := make([]string, 0, f.NumParams)
	for i := 0; i < f.NumParams; i++ {
		tn, err := e.typeName(f.Locals[i].Type)
		if err != nil {
			return "", "", err
		}
		paramDecls = append(paramDecls, fmt.Sprintf("%s _%d", tn, i))
	}
	header := fmt.Sprintf("%s %s(%s)", ret, name, strings.Join(paramDecls, ", "))

	fe := &funcEmitter{
		e:          e,
		f:          f,
		declared:   make([]bool, len(f.Locals)),
		multiBlock: len(f.Blocks) > 1,
	}
	for i := 0; i < f.NumParams; i++ {
		fe.declared[i] = true
	}

	body, err := fe.emitBody()
	if err != nil {
		return "", "", err
	}

	def = header + "\n{\n" + body + "}\n"
	return decl, def, nil
}

// funcDecl renders just the forward declaration for a function signature.
func (e *Emitter) funcDecl(f *mir.Func) (string, error) {
	if f == nil || f.NumParams > len(f.Locals) {
		return "", &MalformedIRError{Block: -1, Msg: "bad signature"}
	}
	ret, err := e.resultTypeName(f.Result)
	if err != nil {
		return "", err
	}
	paramTypes := make([]string, 0, f.NumParams)
	for i := 0; i < f.NumParams; i++ {
		tn, err := e.typeName(f.Locals[i].Type)
		if err != nil {
			return "", err
		}
		paramTypes = append(paramTypes, tn)
	}
	return fmt.Sprintf("%s %s(%s);", ret, sanitizeIdent(f.Name), strings.Join(paramTypes, ", ")), nil
}

func (fe *funcEmitter) emitBody() (string, error) {
	f := fe.f
	if len(f.Blocks) == 0 {
		return "", &MalformedIRError{Block: -1, Msg: "function has no blocks"}
	}
	if f.Entry < 0 || int(f.Entry) >= len(f.Blocks) {
		return "", &MalformedIRError{Block: int(f.Entry), Msg: "entry block out of range"}
	}

	if fe.multiBlock {
		// Pre-declare every temporary at the top; blocks then only assign.
		for i := f.NumParams; i < len(f.Locals); i++ {
			tn, err := fe.e.typeName(f.Locals[i].Type)
			if err != nil {
				if fe.isUnitLocal(mir.LocalID(i)) {
					continue // unit temporaries have no C representation
				}
				return "", err
			}
			fmt.Fprintf(&fe.buf, "  %s _%d;\n", tn, i)
			fe.declared[i] = true
		}
	}

	order := fe.blockOrder()
	for _, bb := range order {
		if fe.multiBlock {
			fmt.Fprintf(&fe.buf, "bb%d:;\n", bb.ID)
		}
		for ii := range bb.Instrs {
			if err := fe.emitInstr(int(bb.ID), ii, &bb.Instrs[ii]); err != nil {
				return "", err
			}
		}
		if err := fe.emitTerminator(int(bb.ID), &bb.Term); err != nil {
			return "", err
		}
	}
	return fe.buf.String(), nil
}

// blockOrder yields the entry block first, then the remaining blocks in IR
// order. Emitted text order is free as long as the entry code runs first
// and every block keeps its label.
func (fe *funcEmitter) blockOrder() []*mir.Block {
	f := fe.f
	order := make([]*mir.Block, 0, len(f.Blocks))
	order = append(order, &f.Blocks[f.Entry])
	for i := range f.Blocks {
		if mir.BlockID(i) == f.Entry {
			continue
		}
		order = append(order, &f.Blocks[i])
	}
	return order
}

// isUnitLocal reports whether a local has unit type (zero-sized, never
// materialized in C).
func (fe *funcEmitter) isUnitLocal(id mir.LocalID) bool {
	l, ok := fe.f.Local(id)
	if !ok {
		return false
	}
	t, ok := fe.e.types.Lookup(l.Type)
	return ok && t.Kind == types.KindUnit
}
