// Package testkit provides compact construction helpers for MIR modules in
// tests. Production code builds modules through the codec; tests build them
// by hand, and doing that with raw struct literals buries the interesting
// part of a test under plumbing.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"ferroc/internal/mir"
	"ferroc/internal/types"
)

// Builder accumulates a module and its type interner.
type Builder struct {
	Types *types.Interner
	mod   *mir.Module
}

// NewBuilder starts an empty module with a freshly seeded interner.
func NewBuilder(name string) *Builder {
	return &Builder{
		Types: types.NewInterner(),
		mod:   &mir.Module{Name: name},
	}
}

// Module returns the built module.
func (b *Builder) Module() *mir.Module { return b.mod }

// Func opens a new function. Parameters and locals are added through the
// returned FuncBuilder before any block is filled.
func (b *Builder) Func(name string, result types.TypeID) *FuncBuilder {
	id, err := safecast.Conv[int32](len(b.mod.Funcs))
	if err != nil {
		panic(fmt.Sprintf("too many functions: %v", err))
	}
	f := &mir.Func{ID: mir.FuncID(id), Name: name, Result: result, Entry: 0}
	b.mod.Funcs = append(b.mod.Funcs, f)
	return &FuncBuilder{b: b, f: f}
}

// FuncBuilder accumulates one function.
type FuncBuilder struct {
	b *Builder
	f *mir.Func
}

// Param appends a parameter local. All parameters must be declared before
// the first non-parameter local.
func (fb *FuncBuilder) Param(name string, ty types.TypeID) mir.LocalID {
	if len(fb.f.Locals) != fb.f.NumParams {
		panic("parameters must precede locals")
	}
	id := fb.addLocal(name, ty)
	fb.f.NumParams++
	return id
}

// Local appends a temporary local.
func (fb *FuncBuilder) Local(name string, ty types.TypeID) mir.LocalID {
	return fb.addLocal(name, ty)
}

func (fb *FuncBuilder) addLocal(name string, ty types.TypeID) mir.LocalID {
	id, err := safecast.Conv[int32](len(fb.f.Locals))
	if err != nil {
		panic(fmt.Sprintf("too many locals: %v", err))
	}
	fb.f.Locals = append(fb.f.Locals, mir.Local{Name: name, Type: ty})
	return mir.LocalID(id)
}

// Block opens a new basic block and returns its builder.
func (fb *FuncBuilder) Block() *BlockBuilder {
	id, err := safecast.Conv[int32](len(fb.f.Blocks))
	if err != nil {
		panic(fmt.Sprintf("too many blocks: %v", err))
	}
	fb.f.Blocks = append(fb.f.Blocks, mir.Block{ID: mir.BlockID(id)})
	return &BlockBuilder{fb: fb, id: mir.BlockID(id)}
}

// BlockBuilder appends instructions and a terminator to one block.
type BlockBuilder struct {
	fb *FuncBuilder
	id mir.BlockID
}

// ID returns the block's ID, usable as a branch target.
func (bb *BlockBuilder) ID() mir.BlockID { return bb.id }

func (bb *BlockBuilder) block() *mir.Block { return &bb.fb.f.Blocks[bb.id] }

// Assign appends `dst = rv`.
func (bb *BlockBuilder) Assign(dst mir.LocalID, rv mir.RValue) *BlockBuilder {
	bb.block().Instrs = append(bb.block().Instrs, mir.Instr{
		Kind:   mir.InstrAssign,
		Assign: mir.AssignInstr{Dst: dst, Src: rv},
	})
	return bb
}

// Call appends a call with a result destination.
func (bb *BlockBuilder) Call(dst mir.LocalID, callee string, args ...mir.Operand) *BlockBuilder {
	bb.block().Instrs = append(bb.block().Instrs, mir.Instr{
		Kind: mir.InstrCall,
		Call: mir.CallInstr{HasDst: true, Dst: dst, Callee: callee, Args: args},
	})
	return bb
}

// CallVoid appends a call whose result is discarded.
func (bb *BlockBuilder) CallVoid(callee string, args ...mir.Operand) *BlockBuilder {
	bb.block().Instrs = append(bb.block().Instrs, mir.Instr{
		Kind: mir.InstrCall,
		Call: mir.CallInstr{Callee: callee, Args: args},
	})
	return bb
}

// Return terminates the block with `return op`.
func (bb *BlockBuilder) Return(op mir.Operand) {
	bb.block().Term = mir.Terminator{
		Kind:   mir.TermReturn,
		Return: mir.ReturnTerm{HasValue: true, Value: op},
	}
}

// ReturnVoid terminates the block with a bare return.
func (bb *BlockBuilder) ReturnVoid() {
	bb.block().Term = mir.Terminator{Kind: mir.TermReturn}
}

// Goto terminates the block with an unconditional branch.
func (bb *BlockBuilder) Goto(target mir.BlockID) {
	bb.block().Term = mir.Terminator{
		Kind: mir.TermGoto,
		Goto: mir.GotoTerm{Target: target},
	}
}

// If terminates the block with a conditional branch.
func (bb *BlockBuilder) If(cond mir.Operand, then, els mir.BlockID) {
	bb.block().Term = mir.Terminator{
		Kind: mir.TermIf,
		If:   mir.IfTerm{Cond: cond, Then: then, Else: els},
	}
}

// Unreachable terminates the block with an unreachable marker.
func (bb *BlockBuilder) Unreachable() {
	bb.block().Term = mir.Terminator{Kind: mir.TermUnreachable}
}

// Operand and rvalue shorthands.

// LocalOp reads a local.
func LocalOp(ty types.TypeID, id mir.LocalID) mir.Operand {
	return mir.Operand{Kind: mir.OperandLocal, Type: ty, Local: id}
}

// AddrOf takes the address of a local.
func AddrOf(ty types.TypeID, id mir.LocalID) mir.Operand {
	return mir.Operand{Kind: mir.OperandAddrOf, Type: ty, Local: id}
}

// IntConst is a signed integer constant operand.
func IntConst(ty types.TypeID, v int64) mir.Operand {
	return mir.Operand{Kind: mir.OperandConst, Type: ty, Const: mir.Const{Kind: mir.ConstInt, IntValue: v}}
}

// UintConst is an unsigned integer constant operand.
func UintConst(ty types.TypeID, v uint64) mir.Operand {
	return mir.Operand{Kind: mir.OperandConst, Type: ty, Const: mir.Const{Kind: mir.ConstUint, UintValue: v}}
}

// BoolConst is a boolean constant operand.
func BoolConst(ty types.TypeID, v bool) mir.Operand {
	return mir.Operand{Kind: mir.OperandConst, Type: ty, Const: mir.Const{Kind: mir.ConstBool, BoolValue: v}}
}

// Use wraps an operand as an rvalue.
func Use(op mir.Operand) mir.RValue {
	return mir.RValue{Kind: mir.RValueUse, Use: op}
}

// Cast builds a cast rvalue.
func Cast(val mir.Operand, target types.TypeID) mir.RValue {
	return mir.RValue{Kind: mir.RValueCast, Cast: mir.CastOp{Value: val, TargetTy: target}}
}

// Bin builds a binary rvalue.
func Bin(op mir.BinOp, l, r mir.Operand) mir.RValue {
	return mir.RValue{Kind: mir.RValueBinaryOp, Binary: mir.BinaryOp{Op: op, Left: l, Right: r}}
}

// Un builds a unary rvalue.
func Un(op mir.UnOp, operand mir.Operand) mir.RValue {
	return mir.RValue{Kind: mir.RValueUnaryOp, Unary: mir.UnaryOp{Op: op, Operand: operand}}
}

// Field builds a field-access rvalue.
func Field(obj mir.Operand, name string, idx int) mir.RValue {
	return mir.RValue{Kind: mir.RValueField, Field: mir.FieldAccess{Object: obj, FieldName: name, FieldIdx: idx}}
}

// StructLit builds a struct-literal rvalue.
func StructLit(ty types.TypeID, fields ...mir.StructLitField) mir.RValue {
	return mir.RValue{Kind: mir.RValueStructLit, StructLit: mir.StructLit{TypeID: ty, Fields: fields}}
}

// LitField pairs a field name with its value.
func LitField(name string, v mir.Operand) mir.StructLitField {
	return mir.StructLitField{Name: name, Value: v}
}
