package mir

import (
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"ferroc/internal/types"
)

// Current schema version - increment when the wire format changes.
const codecSchemaVersion uint16 = 1

// ErrUnknownSchema marks input with a schema version this build does not
// understand.
var ErrUnknownSchema = errors.New("unknown schema version")

// The wire layout mirrors the in-memory IR closely. Type references are raw
// TypeIDs: the decoder replays the encoder's interner table entry by entry,
// so IDs survive the round trip unchanged. Struct entries must appear in
// registration order for the replay to line up; EncodeModule guarantees
// that because the encoder's interner assigned them that way.

type wireModule struct {
	Schema  uint16
	Name    string
	Types   []wireType
	Structs []wireStruct
	Funcs   []wireFunc
}

type wireType struct {
	Kind  uint8
	Width uint8
	Elem  uint32
	Name  string // struct name, empty otherwise
}

type wireStruct struct {
	Fields []wireField
}

type wireField struct {
	Name string
	Type uint32
}

type wireFunc struct {
	Name      string
	Result    uint32
	NumParams int32
	Locals    []wireLocal
	Entry     int32
	Blocks    []wireBlock
}

type wireLocal struct {
	Name string
	Type uint32
}

type wireBlock struct {
	Instrs []wireInstr
	Term   wireTerm
}

type wireInstr struct {
	Kind   uint8
	Dst    int32
	HasDst bool
	Callee string
	Args   []wireOperand
	Src    *wireRValue
}

type wireOperand struct {
	Kind      uint8
	Type      uint32
	ConstKind uint8
	IntValue  int64
	UintValue uint64
	BoolValue bool
	Local     int32
}

type wireRValue struct {
	Kind      uint8
	Op        uint8
	Target    uint32
	FieldName string
	FieldIdx  int32
	LitType   uint32
	LitNames  []string
	Operands  []wireOperand
}

type wireTerm struct {
	Kind     uint8
	HasValue bool
	Value    wireOperand
	Target   int32
	Then     int32
	Else     int32
}

// EncodeModule writes a module plus its type table to w.
func EncodeModule(w io.Writer, m *Module, typesIn *types.Interner) error {
	if m == nil || typesIn == nil {
		return fmt.Errorf("nil module or interner")
	}
	wm := wireModule{
		Schema: codecSchemaVersion,
		Name:   m.Name,
	}
	for i := 1; i <= typesIn.Len(); i++ {
		id := types.TypeID(i)
		t, ok := typesIn.Lookup(id)
		if !ok {
			return fmt.Errorf("type table hole at %d", id)
		}
		wt := wireType{Kind: uint8(t.Kind), Width: uint8(t.Width), Elem: uint32(t.Elem)}
		if t.Kind == types.KindStruct {
			info, ok := typesIn.StructInfo(id)
			if !ok {
				return fmt.Errorf("struct type %d has no info", id)
			}
			wt.Name = info.Name
		}
		wm.Types = append(wm.Types, wt)
	}
	for _, info := range typesIn.Structs() {
		ws := wireStruct{}
		for _, fld := range info.Fields {
			ws.Fields = append(ws.Fields, wireField{Name: fld.Name, Type: uint32(fld.Type)})
		}
		wm.Structs = append(wm.Structs, ws)
	}
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		wf, err := encodeFunc(f)
		if err != nil {
			return fmt.Errorf("function %s: %w", f.Name, err)
		}
		wm.Funcs = append(wm.Funcs, wf)
	}
	return msgpack.NewEncoder(w).Encode(&wm)
}

func encodeFunc(f *Func) (wireFunc, error) {
	numParams, err := safecast.Conv[int32](f.NumParams)
	if err != nil {
		return wireFunc{}, err
	}
	wf := wireFunc{
		Name:      f.Name,
		Result:    uint32(f.Result),
		NumParams: numParams,
		Entry:     int32(f.Entry),
	}
	for _, l := range f.Locals {
		wf.Locals = append(wf.Locals, wireLocal{Name: l.Name, Type: uint32(l.Type)})
	}
	for bi := range f.Blocks {
		b := &f.Blocks[bi]
		wb := wireBlock{Term: encodeTerm(&b.Term)}
		for ii := range b.Instrs {
			wb.Instrs = append(wb.Instrs, encodeInstr(&b.Instrs[ii]))
		}
		wf.Blocks = append(wf.Blocks, wb)
	}
	return wf, nil
}

func encodeInstr(ins *Instr) wireInstr {
	wi := wireInstr{Kind: uint8(ins.Kind)}
	switch ins.Kind {
	case InstrAssign:
		wi.Dst = int32(ins.Assign.Dst)
		rv := encodeRValue(&ins.Assign.Src)
		wi.Src = &rv
	case InstrCall:
		wi.HasDst = ins.Call.HasDst
		wi.Dst = int32(ins.Call.Dst)
		wi.Callee = ins.Call.Callee
		for ai := range ins.Call.Args {
			wi.Args = append(wi.Args, encodeOperand(&ins.Call.Args[ai]))
		}
	}
	return wi
}

func encodeRValue(rv *RValue) wireRValue {
	wr := wireRValue{Kind: uint8(rv.Kind)}
	switch rv.Kind {
	case RValueUse:
		wr.Operands = []wireOperand{encodeOperand(&rv.Use)}
	case RValueUnaryOp:
		wr.Op = uint8(rv.Unary.Op)
		wr.Operands = []wireOperand{encodeOperand(&rv.Unary.Operand)}
	case RValueBinaryOp:
		wr.Op = uint8(rv.Binary.Op)
		wr.Operands = []wireOperand{encodeOperand(&rv.Binary.Left), encodeOperand(&rv.Binary.Right)}
	case RValueCast:
		wr.Target = uint32(rv.Cast.TargetTy)
		wr.Operands = []wireOperand{encodeOperand(&rv.Cast.Value)}
	case RValueField:
		wr.FieldName = rv.Field.FieldName
		wr.FieldIdx = int32(rv.Field.FieldIdx)
		wr.Operands = []wireOperand{encodeOperand(&rv.Field.Object)}
	case RValueStructLit:
		wr.LitType = uint32(rv.StructLit.TypeID)
		for i := range rv.StructLit.Fields {
			fld := &rv.StructLit.Fields[i]
			wr.LitNames = append(wr.LitNames, fld.Name)
			wr.Operands = append(wr.Operands, encodeOperand(&fld.Value))
		}
	}
	return wr
}

func encodeOperand(op *Operand) wireOperand {
	return wireOperand{
		Kind:      uint8(op.Kind),
		Type:      uint32(op.Type),
		ConstKind: uint8(op.Const.Kind),
		IntValue:  op.Const.IntValue,
		UintValue: op.Const.UintValue,
		BoolValue: op.Const.BoolValue,
		Local:     int32(op.Local),
	}
}

func encodeTerm(term *Terminator) wireTerm {
	wt := wireTerm{Kind: uint8(term.Kind)}
	switch term.Kind {
	case TermReturn:
		wt.HasValue = term.Return.HasValue
		wt.Value = encodeOperand(&term.Return.Value)
	case TermGoto:
		wt.Target = int32(term.Goto.Target)
	case TermIf:
		wt.Value = encodeOperand(&term.If.Cond)
		wt.Then = int32(term.If.Then)
		wt.Else = int32(term.If.Else)
	}
	return wt
}

// DecodeModule reads a module from r, rebuilding a fresh type interner for
// it. Every unit owns its own interner, which is what keeps parallel unit
// lowering free of shared state.
func DecodeModule(r io.Reader) (*Module, *types.Interner, error) {
	var wm wireModule
	if err := msgpack.NewDecoder(r).Decode(&wm); err != nil {
		return nil, nil, fmt.Errorf("decode module: %w", err)
	}
	if wm.Schema != codecSchemaVersion {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrUnknownSchema, wm.Schema, codecSchemaVersion)
	}

	typesIn := types.NewInterner()
	structIDs := make([]types.TypeID, 0, len(wm.Structs))
	for i, wt := range wm.Types {
		want := types.TypeID(i + 1)
		var got types.TypeID
		switch types.Kind(wt.Kind) {
		case types.KindInvalid:
			got = want // pre-seeded sentinel slot
		case types.KindStruct:
			got = typesIn.RegisterStruct(wt.Name, nil)
			structIDs = append(structIDs, got)
		default:
			got = typesIn.Intern(types.Type{
				Kind:  types.Kind(wt.Kind),
				Width: types.Width(wt.Width),
				Elem:  types.TypeID(wt.Elem),
			})
		}
		if got != want {
			return nil, nil, fmt.Errorf("type table replay diverged at %d (got %d)", want, got)
		}
	}
	if len(structIDs) != len(wm.Structs) {
		return nil, nil, fmt.Errorf("struct table mismatch: %d entries, %d types", len(wm.Structs), len(structIDs))
	}
	for si, ws := range wm.Structs {
		fields := make([]types.Field, 0, len(ws.Fields))
		for _, wf := range ws.Fields {
			fields = append(fields, types.Field{Name: wf.Name, Type: types.TypeID(wf.Type)})
		}
		if err := typesIn.DefineStructFields(structIDs[si], fields); err != nil {
			return nil, nil, err
		}
	}

	m := &Module{Name: wm.Name}
	for fi := range wm.Funcs {
		f, err := decodeFunc(&wm.Funcs[fi], FuncID(fi))
		if err != nil {
			return nil, nil, fmt.Errorf("function %s: %w", wm.Funcs[fi].Name, err)
		}
		m.Funcs = append(m.Funcs, f)
	}
	return m, typesIn, nil
}

func decodeFunc(wf *wireFunc, id FuncID) (*Func, error) {
	numParams, err := safecast.Conv[int](wf.NumParams)
	if err != nil {
		return nil, err
	}
	f := &Func{
		ID:        id,
		Name:      wf.Name,
		Result:    types.TypeID(wf.Result),
		NumParams: numParams,
		Entry:     BlockID(wf.Entry),
	}
	for _, wl := range wf.Locals {
		f.Locals = append(f.Locals, Local{Name: wl.Name, Type: types.TypeID(wl.Type)})
	}
	for bi := range wf.Blocks {
		wb := &wf.Blocks[bi]
		b := Block{ID: BlockID(bi), Term: decodeTerm(&wb.Term)}
		for ii := range wb.Instrs {
			ins, err := decodeInstr(&wb.Instrs[ii])
			if err != nil {
				return nil, fmt.Errorf("block %d instr %d: %w", bi, ii, err)
			}
			b.Instrs = append(b.Instrs, ins)
		}
		f.Blocks = append(f.Blocks, b)
	}
	return f, nil
}

func decodeInstr(wi *wireInstr) (Instr, error) {
	ins := Instr{Kind: InstrKind(wi.Kind)}
	switch ins.Kind {
	case InstrAssign:
		if wi.Src == nil {
			return ins, fmt.Errorf("assign without rvalue")
		}
		rv, err := decodeRValue(wi.Src)
		if err != nil {
			return ins, err
		}
		ins.Assign = AssignInstr{Dst: LocalID(wi.Dst), Src: rv}
	case InstrCall:
		call := CallInstr{HasDst: wi.HasDst, Dst: LocalID(wi.Dst), Callee: wi.Callee}
		for ai := range wi.Args {
			call.Args = append(call.Args, decodeOperand(&wi.Args[ai]))
		}
		ins.Call = call
	case InstrNop:
	default:
		return ins, fmt.Errorf("unknown instruction kind %d", wi.Kind)
	}
	return ins, nil
}

func decodeRValue(wr *wireRValue) (RValue, error) {
	rv := RValue{Kind: RValueKind(wr.Kind)}
	needOperands := func(n int) error {
		if len(wr.Operands) != n {
			return fmt.Errorf("%s rvalue wants %d operands, got %d", rv.Kind, n, len(wr.Operands))
		}
		return nil
	}
	switch rv.Kind {
	case RValueUse:
		if err := needOperands(1); err != nil {
			return rv, err
		}
		rv.Use = decodeOperand(&wr.Operands[0])
	case RValueUnaryOp:
		if err := needOperands(1); err != nil {
			return rv, err
		}
		rv.Unary = UnaryOp{Op: UnOp(wr.Op), Operand: decodeOperand(&wr.Operands[0])}
	case RValueBinaryOp:
		if err := needOperands(2); err != nil {
			return rv, err
		}
		rv.Binary = BinaryOp{
			Op:    BinOp(wr.Op),
			Left:  decodeOperand(&wr.Operands[0]),
			Right: decodeOperand(&wr.Operands[1]),
		}
	case RValueCast:
		if err := needOperands(1); err != nil {
			return rv, err
		}
		rv.Cast = CastOp{Value: decodeOperand(&wr.Operands[0]), TargetTy: types.TypeID(wr.Target)}
	case RValueField:
		if err := needOperands(1); err != nil {
			return rv, err
		}
		rv.Field = FieldAccess{
			Object:    decodeOperand(&wr.Operands[0]),
			FieldName: wr.FieldName,
			FieldIdx:  int(wr.FieldIdx),
		}
	case RValueStructLit:
		if len(wr.LitNames) != len(wr.Operands) {
			return rv, fmt.Errorf("struct literal names/values mismatch")
		}
		lit := StructLit{TypeID: types.TypeID(wr.LitType)}
		for i := range wr.Operands {
			lit.Fields = append(lit.Fields, StructLitField{
				Name:  wr.LitNames[i],
				Value: decodeOperand(&wr.Operands[i]),
			})
		}
		rv.StructLit = lit
	default:
		return rv, fmt.Errorf("unknown rvalue kind %d", wr.Kind)
	}
	return rv, nil
}

func decodeOperand(wo *wireOperand) Operand {
	return Operand{
		Kind: OperandKind(wo.Kind),
		Type: types.TypeID(wo.Type),
		Const: Const{
			Kind:      ConstKind(wo.ConstKind),
			IntValue:  wo.IntValue,
			UintValue: wo.UintValue,
			BoolValue: wo.BoolValue,
		},
		Local: LocalID(wo.Local),
	}
}

func decodeTerm(wt *wireTerm) Terminator {
	term := Terminator{Kind: TermKind(wt.Kind)}
	switch term.Kind {
	case TermReturn:
		term.Return = ReturnTerm{HasValue: wt.HasValue, Value: decodeOperand(&wt.Value)}
	case TermGoto:
		term.Goto = GotoTerm{Target: BlockID(wt.Target)}
	case TermIf:
		term.If = IfTerm{Cond: decodeOperand(&wt.Value), Then: BlockID(wt.Then), Else: BlockID(wt.Else)}
	}
	return term
}
