package diag

import "testing"

func TestFormatDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		NewError(CgenUnsupportedOp, Locus{Unit: "alpha", Function: "foo", Block: 2, Instr: 1},
			"unsupported operation shl\non (bool)").
			WithNote("function skipped"),
		New(SevWarning, IrMalformed, Locus{Unit: "alpha", Function: "bar", Block: NoIndex, Instr: NoIndex},
			"another"),
	}

	expected := "error CGN4002 alpha/foo:bb2:1 unsupported operation shl on (bool)\n" +
		"note CGN4002 alpha/foo:bb2:1 function skipped\n" +
		"warning IR1002 alpha/bar another"

	if got := FormatDiagnostics(diags, true); got != expected {
		t.Fatalf("unexpected formatting:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatDiagnosticsWithoutNotes(t *testing.T) {
	diags := []Diagnostic{
		NewError(DrvReadFailed, Locus{Unit: "a.mir", Block: NoIndex, Instr: NoIndex}, "boom").
			WithNote("hidden"),
	}
	expected := "error DRV5001 a.mir boom"
	if got := FormatDiagnostics(diags, false); got != expected {
		t.Fatalf("unexpected formatting: %q", got)
	}
}

func TestBagSortIsStableAndOrdered(t *testing.T) {
	bag := NewBag(16)
	bag.Add(New(SevWarning, IrMalformed, Locus{Unit: "b", Function: "f", Block: 0, Instr: 0}, "w"))
	bag.Add(NewError(CgenUnsupported, Locus{Unit: "a", Function: "g", Block: 1, Instr: 0}, "e2"))
	bag.Add(NewError(CgenUnsupported, Locus{Unit: "a", Function: "f", Block: 0, Instr: 2}, "e1"))
	bag.Add(New(SevWarning, CgenUnsupported, Locus{Unit: "a", Function: "f", Block: 0, Instr: 2}, "wf"))

	bag.Sort()
	items := bag.Items()
	if items[0].Message != "e1" || items[1].Message != "wf" {
		t.Fatalf("severity must break ties descending: %v, %v", items[0].Message, items[1].Message)
	}
	if items[2].Message != "e2" {
		t.Fatalf("function order broken: %v", items[2].Message)
	}
	if items[3].Primary.Unit != "b" {
		t.Fatalf("unit order broken: %v", items[3].Primary.Unit)
	}
}

func TestBagCapDropsOverflow(t *testing.T) {
	bag := NewBag(2)
	locus := Locus{Unit: "u", Block: NoIndex, Instr: NoIndex}
	if !bag.Add(NewError(IrMalformed, locus, "one")) {
		t.Fatal("first add dropped")
	}
	if !bag.Add(NewError(IrMalformed, locus, "two")) {
		t.Fatal("second add dropped")
	}
	if bag.Add(NewError(IrMalformed, locus, "three")) {
		t.Fatal("overflow accepted")
	}
	if bag.Len() != 2 {
		t.Fatalf("wrong length: %d", bag.Len())
	}
}

func TestBagCapAbove16Bits(t *testing.T) {
	// Directory-wide runs can legitimately ask for very large caps; the cap
	// must not wrap at 65536 and silently drop everything after.
	const max = 1 << 17
	bag := NewBag(max)
	if bag.Cap() != max {
		t.Fatalf("cap truncated: %d", bag.Cap())
	}
	locus := Locus{Unit: "u", Block: NoIndex, Instr: NoIndex}
	for i := 0; i < 70000; i++ {
		if !bag.Add(New(SevWarning, IrMalformed, locus, "w")) {
			t.Fatalf("add %d dropped below cap", i)
		}
	}
	if bag.Len() != 70000 {
		t.Fatalf("wrong length: %d", bag.Len())
	}

	other := NewBag(70000)
	for i := 0; i < 70000; i++ {
		other.Add(New(SevWarning, IrMalformed, locus, "o"))
	}
	merged := NewBag(1)
	merged.Merge(bag)
	merged.Merge(other)
	if merged.Len() != 140000 {
		t.Fatalf("merge lost items: %d", merged.Len())
	}
	if merged.Cap() < 140000 {
		t.Fatalf("merge must grow the cap: %d", merged.Cap())
	}
}
