package mir

import (
	"errors"
	"fmt"

	"ferroc/internal/types"
)

// Validate checks MIR module invariants.
// Returns an error joining every violation found.
func Validate(m *Module, typesIn *types.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := validateFunc(f, typesIn); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(f *Func, typesIn *types.Interner) error {
	var errs []error

	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocalIDs(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocalTypes(f, typesIn); err != nil {
		errs = append(errs, err)
	}
	// Definition order only makes sense once IDs and targets are in range.
	if len(errs) == 0 {
		if err := validateDefBeforeUse(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validateBlocksTerminated(f *Func) error {
	var errs []error
	if f.Entry < 0 || int(f.Entry) >= len(f.Blocks) {
		errs = append(errs, fmt.Errorf("entry block %d out of range", f.Entry))
	}
	for i := range f.Blocks {
		if !f.Blocks[i].Terminated() {
			errs = append(errs, fmt.Errorf("block %d has no terminator", i))
		}
	}
	return errors.Join(errs...)
}

func validateBlockTargets(f *Func) error {
	var errs []error
	inRange := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}
	for i := range f.Blocks {
		term := &f.Blocks[i].Term
		switch term.Kind {
		case TermGoto:
			if !inRange(term.Goto.Target) {
				errs = append(errs, fmt.Errorf("block %d: goto target %d out of range", i, term.Goto.Target))
			}
		case TermIf:
			if !inRange(term.If.Then) {
				errs = append(errs, fmt.Errorf("block %d: then target %d out of range", i, term.If.Then))
			}
			if !inRange(term.If.Else) {
				errs = append(errs, fmt.Errorf("block %d: else target %d out of range", i, term.If.Else))
			}
		}
	}
	return errors.Join(errs...)
}

func validateLocalIDs(f *Func) error {
	var errs []error
	if f.NumParams < 0 || f.NumParams > len(f.Locals) {
		errs = append(errs, fmt.Errorf("param count %d exceeds %d locals", f.NumParams, len(f.Locals)))
	}
	check := func(blockIdx, instrIdx int, id LocalID) {
		if id < 0 || int(id) >= len(f.Locals) {
			errs = append(errs, fmt.Errorf("block %d instr %d: local %d out of range", blockIdx, instrIdx, id))
		}
	}
	checkOperand := func(blockIdx, instrIdx int, op *Operand) {
		if op.Kind == OperandLocal || op.Kind == OperandAddrOf {
			check(blockIdx, instrIdx, op.Local)
		}
	}
	for bi := range f.Blocks {
		b := &f.Blocks[bi]
		for ii := range b.Instrs {
			ins := &b.Instrs[ii]
			switch ins.Kind {
			case InstrAssign:
				check(bi, ii, ins.Assign.Dst)
				forEachRValueOperand(&ins.Assign.Src, func(op *Operand) {
					checkOperand(bi, ii, op)
				})
			case InstrCall:
				if ins.Call.HasDst {
					check(bi, ii, ins.Call.Dst)
				}
				for ai := range ins.Call.Args {
					checkOperand(bi, ii, &ins.Call.Args[ai])
				}
			}
		}
		term := &b.Term
		termIdx := len(b.Instrs)
		switch term.Kind {
		case TermReturn:
			if term.Return.HasValue {
				checkOperand(bi, termIdx, &term.Return.Value)
			}
		case TermIf:
			checkOperand(bi, termIdx, &term.If.Cond)
		}
	}
	return errors.Join(errs...)
}

func validateLocalTypes(f *Func, typesIn *types.Interner) error {
	var errs []error
	for i, l := range f.Locals {
		if l.Type == types.NoTypeID {
			errs = append(errs, fmt.Errorf("local %d has no type", i))
			continue
		}
		if typesIn != nil {
			if _, ok := typesIn.Lookup(l.Type); !ok {
				errs = append(errs, fmt.Errorf("local %d references unknown type %d", i, l.Type))
			}
		}
	}
	return errors.Join(errs...)
}

// validateDefBeforeUse runs a must-assign forward dataflow over the block
// graph: a local may only be read when every path from the entry assigns
// it first. Parameters count as assigned on entry.
func validateDefBeforeUse(f *Func) error {
	if len(f.Blocks) == 0 {
		return nil
	}

	n := len(f.Locals)
	entrySet := func() []bool {
		set := make([]bool, n)
		for i := 0; i < f.NumParams; i++ {
			set[i] = true
		}
		return set
	}

	// in[b] = intersection of out[p] over predecessors p; entry starts with
	// params only. Unreached blocks keep a nil in-set and are skipped.
	in := make([][]bool, len(f.Blocks))
	in[f.Entry] = entrySet()

	intersect := func(dst, src []bool) []bool {
		if dst == nil {
			out := make([]bool, n)
			copy(out, src)
			return out
		}
		for i := range dst {
			dst[i] = dst[i] && src[i]
		}
		return dst
	}

	flow := func(bi int, assigned []bool) []bool {
		out := make([]bool, n)
		copy(out, assigned)
		for ii := range f.Blocks[bi].Instrs {
			ins := &f.Blocks[bi].Instrs[ii]
			switch ins.Kind {
			case InstrAssign:
				out[ins.Assign.Dst] = true
			case InstrCall:
				if ins.Call.HasDst {
					out[ins.Call.Dst] = true
				}
			}
		}
		return out
	}

	for changed := true; changed; {
		changed = false
		for bi := range f.Blocks {
			if in[bi] == nil {
				continue
			}
			out := flow(bi, in[bi])
			term := &f.Blocks[bi].Term
			var succs []BlockID
			switch term.Kind {
			case TermGoto:
				succs = []BlockID{term.Goto.Target}
			case TermIf:
				succs = []BlockID{term.If.Then, term.If.Else}
			}
			for _, s := range succs {
				before := in[s]
				merged := intersect(cloneSet(before), out)
				if !setsEqual(before, merged) {
					in[s] = merged
					changed = true
				}
			}
		}
	}

	var errs []error
	for bi := range f.Blocks {
		if in[bi] == nil {
			continue
		}
		assigned := make([]bool, n)
		copy(assigned, in[bi])
		useCheck := func(ii int) func(op *Operand) {
			return func(op *Operand) {
				if op.Kind != OperandLocal && op.Kind != OperandAddrOf {
					return
				}
				if !assigned[op.Local] {
					errs = append(errs, fmt.Errorf("block %d instr %d: local %d read before assignment", bi, ii, op.Local))
				}
			}
		}
		for ii := range f.Blocks[bi].Instrs {
			ins := &f.Blocks[bi].Instrs[ii]
			switch ins.Kind {
			case InstrAssign:
				forEachRValueOperand(&ins.Assign.Src, useCheck(ii))
				assigned[ins.Assign.Dst] = true
			case InstrCall:
				for ai := range ins.Call.Args {
					useCheck(ii)(&ins.Call.Args[ai])
				}
				if ins.Call.HasDst {
					assigned[ins.Call.Dst] = true
				}
			}
		}
		term := &f.Blocks[bi].Term
		termIdx := len(f.Blocks[bi].Instrs)
		switch term.Kind {
		case TermReturn:
			if term.Return.HasValue {
				useCheck(termIdx)(&term.Return.Value)
			}
		case TermIf:
			useCheck(termIdx)(&term.If.Cond)
		}
	}
	return errors.Join(errs...)
}

func cloneSet(set []bool) []bool {
	if set == nil {
		return nil
	}
	out := make([]bool, len(set))
	copy(out, set)
	return out
}

func setsEqual(a, b []bool) bool {
	if (a == nil) != (b == nil) || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// forEachRValueOperand visits every operand an rvalue reads.
func forEachRValueOperand(rv *RValue, visit func(op *Operand)) {
	switch rv.Kind {
	case RValueUse:
		visit(&rv.Use)
	case RValueUnaryOp:
		visit(&rv.Unary.Operand)
	case RValueBinaryOp:
		visit(&rv.Binary.Left)
		visit(&rv.Binary.Right)
	case RValueCast:
		visit(&rv.Cast.Value)
	case RValueField:
		visit(&rv.Field.Object)
	case RValueStructLit:
		for i := range rv.StructLit.Fields {
			visit(&rv.StructLit.Fields[i].Value)
		}
	}
}
