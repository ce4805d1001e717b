package types

import "testing"

func TestInternDeduplicates(t *testing.T) {
	in := NewInterner()
	a := in.Intern(MakeInt(Width32))
	b := in.Intern(MakeInt(Width32))
	if a != b {
		t.Fatalf("structurally equal types got different ids: %d vs %d", a, b)
	}
	if a != in.Builtins().I32 {
		t.Fatalf("i32 did not resolve to the seeded builtin: %d vs %d", a, in.Builtins().I32)
	}
	c := in.Intern(MakeUint(Width32))
	if c == a {
		t.Fatal("signedness must distinguish types")
	}
}

func TestBuiltinIDsAreStable(t *testing.T) {
	// The codec replays interner tables by position, so two fresh
	// interners must seed builtins identically.
	a := NewInterner()
	b := NewInterner()
	if a.Builtins() != b.Builtins() {
		t.Fatalf("builtin ids differ between interners:\n%+v\n%+v", a.Builtins(), b.Builtins())
	}
	if a.Len() != b.Len() {
		t.Fatalf("fresh interners differ in size: %d vs %d", a.Len(), b.Len())
	}
}

func TestPointerTypes(t *testing.T) {
	in := NewInterner()
	u8 := in.Builtins().U8
	p1 := in.Intern(MakePointer(u8))
	p2 := in.Intern(MakePointer(u8))
	if p1 != p2 {
		t.Fatal("pointer types must deduplicate by element")
	}
	pp := in.Intern(MakePointer(p1))
	if pp == p1 {
		t.Fatal("pointer to pointer must be distinct")
	}
	got, ok := in.Lookup(pp)
	if !ok || got.Kind != KindPointer || got.Elem != p1 {
		t.Fatalf("pointer lookup broken: %+v ok=%v", got, ok)
	}
}

func TestRegisterStructIsNominal(t *testing.T) {
	in := NewInterner()
	i32 := in.Builtins().I32
	a := in.RegisterStruct("Point", []Field{{Name: "x", Type: i32}, {Name: "y", Type: i32}})
	b := in.RegisterStruct("Point", nil)
	if a != b {
		t.Fatalf("same name must yield same id: %d vs %d", a, b)
	}
	info, ok := in.StructInfo(a)
	if !ok {
		t.Fatal("struct info missing")
	}
	if len(info.Fields) != 2 {
		t.Fatalf("re-registration must not clobber fields, got %d", len(info.Fields))
	}
	c := in.RegisterStruct("Size", []Field{{Name: "w", Type: i32}})
	if c == a {
		t.Fatal("different names must yield different ids")
	}
}

func TestDefineStructFieldsBackfills(t *testing.T) {
	in := NewInterner()
	id := in.RegisterStruct("Node", nil)
	next := in.Intern(MakePointer(id))
	if err := in.DefineStructFields(id, []Field{{Name: "next", Type: next}}); err != nil {
		t.Fatalf("DefineStructFields failed: %v", err)
	}
	info, _ := in.StructInfo(id)
	if len(info.Fields) != 1 || info.Fields[0].Type != next {
		t.Fatalf("backfill lost: %+v", info)
	}
}

func TestDescribe(t *testing.T) {
	in := NewInterner()
	bt := in.Builtins()
	pt := in.Intern(MakePointer(bt.U8))
	st := in.RegisterStruct("Point", nil)

	cases := []struct {
		id   TypeID
		want string
	}{
		{bt.I32, "i32"},
		{bt.U8, "u8"},
		{bt.Bool, "bool"},
		{bt.Unit, "unit"},
		{pt, "*u8"},
		{st, "Point"},
	}
	for _, tc := range cases {
		if got := Describe(in, tc.id); got != tc.want {
			t.Fatalf("Describe(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
