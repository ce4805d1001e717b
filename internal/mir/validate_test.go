package mir

import (
	"strings"
	"testing"

	"ferroc/internal/types"
)

func validModule() (*Module, *types.Interner) {
	in := types.NewInterner()
	bt := in.Builtins()
	f := &Func{
		ID:        0,
		Name:      "add1",
		Result:    bt.I32,
		NumParams: 1,
		Locals: []Local{
			{Name: "x", Type: bt.I32},
			{Name: "out", Type: bt.I32},
		},
		Blocks: []Block{{
			ID: 0,
			Instrs: []Instr{{
				Kind: InstrAssign,
				Assign: AssignInstr{
					Dst: 1,
					Src: RValue{Kind: RValueBinaryOp, Binary: BinaryOp{
						Op:    BinAdd,
						Left:  Operand{Kind: OperandLocal, Type: bt.I32, Local: 0},
						Right: Operand{Kind: OperandConst, Type: bt.I32, Const: Const{Kind: ConstInt, IntValue: 1}},
					}},
				},
			}},
			Term: Terminator{
				Kind:   TermReturn,
				Return: ReturnTerm{HasValue: true, Value: Operand{Kind: OperandLocal, Type: bt.I32, Local: 1}},
			},
		}},
		Entry: 0,
	}
	return &Module{Name: "m", Funcs: []*Func{f}}, in
}

func TestValidateAcceptsWellFormedModule(t *testing.T) {
	m, in := validModule()
	if err := Validate(m, in); err != nil {
		t.Fatalf("valid module rejected: %v", err)
	}
}

func TestValidateRejectsMissingTerminator(t *testing.T) {
	m, in := validModule()
	m.Funcs[0].Blocks[0].Term = Terminator{Kind: TermNone}
	err := Validate(m, in)
	if err == nil {
		t.Fatal("unterminated block accepted")
	}
	if !strings.Contains(err.Error(), "terminator") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestValidateRejectsBadBranchTarget(t *testing.T) {
	m, in := validModule()
	m.Funcs[0].Blocks[0].Term = Terminator{Kind: TermGoto, Goto: GotoTerm{Target: 7}}
	if err := Validate(m, in); err == nil {
		t.Fatal("out-of-range branch target accepted")
	}
}

func TestValidateRejectsOutOfRangeLocal(t *testing.T) {
	m, in := validModule()
	m.Funcs[0].Blocks[0].Instrs[0].Assign.Dst = 9
	if err := Validate(m, in); err == nil {
		t.Fatal("out-of-range local accepted")
	}
}

func TestValidateRejectsReadBeforeAssignment(t *testing.T) {
	m, in := validModule()
	// Swap operands so the instruction reads the yet-unassigned local 1.
	m.Funcs[0].Blocks[0].Instrs[0].Assign.Src.Binary.Left = Operand{
		Kind: OperandLocal, Type: in.Builtins().I32, Local: 1,
	}
	err := Validate(m, in)
	if err == nil {
		t.Fatal("read before assignment accepted")
	}
	if !strings.Contains(err.Error(), "before assignment") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestValidateParamsAreAssigned(t *testing.T) {
	// A parameter may be read without a prior assignment in the body.
	m, in := validModule()
	if err := Validate(m, in); err != nil {
		t.Fatalf("parameter read flagged: %v", err)
	}
}

func TestValidateBranchJoin(t *testing.T) {
	in := types.NewInterner()
	bt := in.Builtins()
	assign := func(dst LocalID, src LocalID) Instr {
		return Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: dst,
			Src: RValue{Kind: RValueUse, Use: Operand{Kind: OperandLocal, Type: bt.U32, Local: src}},
		}}
	}
	f := &Func{
		Name:      "pick",
		Result:    bt.U32,
		NumParams: 3,
		Locals: []Local{
			{Name: "cond", Type: bt.Bool},
			{Name: "a", Type: bt.U32},
			{Name: "b", Type: bt.U32},
			{Name: "out", Type: bt.U32},
		},
		Blocks: []Block{
			{ID: 0, Term: Terminator{Kind: TermIf, If: IfTerm{
				Cond: Operand{Kind: OperandLocal, Type: bt.Bool, Local: 0},
				Then: 1, Else: 2,
			}}},
			{ID: 1, Instrs: []Instr{assign(3, 1)}, Term: Terminator{Kind: TermGoto, Goto: GotoTerm{Target: 3}}},
			{ID: 2, Instrs: []Instr{assign(3, 2)}, Term: Terminator{Kind: TermGoto, Goto: GotoTerm{Target: 3}}},
			{ID: 3, Term: Terminator{Kind: TermReturn, Return: ReturnTerm{
				HasValue: true,
				Value:    Operand{Kind: OperandLocal, Type: bt.U32, Local: 3},
			}}},
		},
		Entry: 0,
	}
	m := &Module{Name: "m", Funcs: []*Func{f}}

	// Both branches assign local 3, so the join may read it.
	if err := Validate(m, in); err != nil {
		t.Fatalf("join of two assigning branches rejected: %v", err)
	}

	// Dropping the assignment from one branch must be caught.
	f.Blocks[2].Instrs = nil
	if err := Validate(m, in); err == nil {
		t.Fatal("read after partially assigning branches accepted")
	}
}
