package cgen

import (
	"testing"

	"ferroc/internal/mir"
	"ferroc/internal/types"
)

func binExpr(t *testing.T, e *Emitter, op mir.BinOp, ty types.TypeID) string {
	t.Helper()
	fe := &funcEmitter{
		e: e,
		f: &mir.Func{
			Name:      "f",
			NumParams: 2,
			Locals:    []mir.Local{{Name: "a", Type: ty}, {Name: "b", Type: ty}},
		},
		declared: []bool{true, true},
	}
	expr, err := fe.emitBinary(&mir.BinaryOp{
		Op:    op,
		Left:  mir.Operand{Kind: mir.OperandLocal, Type: ty, Local: 0},
		Right: mir.Operand{Kind: mir.OperandLocal, Type: ty, Local: 1},
	})
	if err != nil {
		t.Fatalf("emitBinary failed: %v", err)
	}
	return expr
}

func TestBinaryLowering(t *testing.T) {
	e, typesIn := newTestEmitter(t)
	bt := typesIn.Builtins()

	cases := []struct {
		name string
		op   mir.BinOp
		ty   types.TypeID
		want string
	}{
		{"unsigned add wide", mir.BinAdd, bt.U32, "(_0 + _1)"},
		{"unsigned add narrow", mir.BinAdd, bt.U8, "(uint8_t)((uint32_t)_0 + (uint32_t)_1)"},
		{"unsigned mul narrow", mir.BinMul, bt.U16, "(uint16_t)((uint32_t)_0 * (uint32_t)_1)"},
		{"signed add", mir.BinAdd, bt.I32,
			"__ferro_utos(uint32_t, int32_t, (uint32_t)_0 + (uint32_t)_1, INT32_MAX)"},
		{"signed sub", mir.BinSub, bt.I64,
			"__ferro_utos(uint64_t, int64_t, (uint64_t)_0 - (uint64_t)_1, INT64_MAX)"},
		{"signed mul narrow", mir.BinMul, bt.I8,
			"__ferro_utos(uint8_t, int8_t, (uint8_t)((uint32_t)(uint8_t)_0 * (uint32_t)(uint8_t)_1), INT8_MAX)"},
		{"signed div", mir.BinDiv, bt.I32, "(_0 / _1)"},
		{"unsigned rem", mir.BinRem, bt.U64, "(_0 % _1)"},
		{"bitand", mir.BinAnd, bt.U32, "(_0 & _1)"},
		{"xor signed", mir.BinXor, bt.I16, "(_0 ^ _1)"},
		{"unsigned shl wide", mir.BinShl, bt.U32, "(_0 << (_1 & 31))"},
		{"unsigned shl narrow", mir.BinShl, bt.U8, "(uint8_t)((uint32_t)(uint8_t)_0 << (_1 & 7))"},
		{"signed shl", mir.BinShl, bt.I32,
			"__ferro_utos(uint32_t, int32_t, (uint32_t)_0 << (_1 & 31), INT32_MAX)"},
		{"shr", mir.BinShr, bt.I32, "(_0 >> (_1 & 31))"},
		{"unsigned shr", mir.BinShr, bt.U16, "(_0 >> (_1 & 15))"},
		{"compare lt", mir.BinLt, bt.U64, "(_0 < _1)"},
		{"compare eq signed", mir.BinEq, bt.I8, "(_0 == _1)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := binExpr(t, e, tc.op, tc.ty); got != tc.want {
				t.Fatalf("wrong lowering:\nwant %s\ngot  %s", tc.want, got)
			}
		})
	}
}

func TestBoolBinaryLowering(t *testing.T) {
	e, typesIn := newTestEmitter(t)
	bt := typesIn.Builtins()

	if got := binExpr(t, e, mir.BinAnd, bt.Bool); got != "(_0 & _1)" {
		t.Fatalf("bool and lowered to %s", got)
	}
	if got := binExpr(t, e, mir.BinEq, bt.Bool); got != "(_0 == _1)" {
		t.Fatalf("bool eq lowered to %s", got)
	}
}

func unExpr(t *testing.T, e *Emitter, op mir.UnOp, ty types.TypeID) string {
	t.Helper()
	fe := &funcEmitter{
		e: e,
		f: &mir.Func{
			Name:      "f",
			NumParams: 1,
			Locals:    []mir.Local{{Name: "a", Type: ty}},
		},
		declared: []bool{true},
	}
	expr, err := fe.emitUnary(&mir.UnaryOp{
		Op:      op,
		Operand: mir.Operand{Kind: mir.OperandLocal, Type: ty, Local: 0},
	})
	if err != nil {
		t.Fatalf("emitUnary failed: %v", err)
	}
	return expr
}

func TestUnaryLowering(t *testing.T) {
	e, typesIn := newTestEmitter(t)
	bt := typesIn.Builtins()
	ptrU8 := typesIn.Intern(types.MakePointer(bt.U8))

	cases := []struct {
		name string
		op   mir.UnOp
		ty   types.TypeID
		want string
	}{
		{"bool not", mir.UnNot, bt.Bool, "(!_0)"},
		{"bitwise not", mir.UnNot, bt.U32, "(~_0)"},
		{"signed neg", mir.UnNeg, bt.I32,
			"__ferro_utos(uint32_t, int32_t, (uint32_t)0 - (uint32_t)_0, INT32_MAX)"},
		{"signed neg narrow", mir.UnNeg, bt.I8,
			"__ferro_utos(uint8_t, int8_t, (uint8_t)((uint32_t)(uint8_t)0 - (uint32_t)(uint8_t)_0), INT8_MAX)"},
		{"deref", mir.UnDeref, ptrU8, "(*_0)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := unExpr(t, e, tc.op, tc.ty); got != tc.want {
				t.Fatalf("wrong lowering:\nwant %s\ngot  %s", tc.want, got)
			}
		})
	}
}
