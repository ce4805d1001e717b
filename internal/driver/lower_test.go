package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ferroc/internal/diag"
	"ferroc/internal/mir"
	"ferroc/internal/testkit"
	"ferroc/internal/types"
)

func writeModule(t *testing.T, dir, name string, m *mir.Module, in *types.Interner) string {
	t.Helper()
	var buf bytes.Buffer
	if err := mir.EncodeModule(&buf, m, in); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func identityModule(unit string) (*mir.Module, *types.Interner) {
	b := testkit.NewBuilder(unit)
	bt := b.Types.Builtins()
	fb := b.Func("ident", bt.I32)
	x := fb.Param("x", bt.I32)
	blk := fb.Block()
	blk.Return(testkit.LocalOp(bt.I32, x))
	return b.Module(), b.Types
}

func TestLowerFileWritesUnit(t *testing.T) {
	dir := t.TempDir()
	m, in := identityModule("alpha")
	path := writeModule(t, dir, "alpha.mir", m, in)

	res, err := LowerFile(context.Background(), path, Options{Timings: true})
	if err != nil {
		t.Fatalf("LowerFile failed: %v", err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatDiagnostics(res.Bag.Items(), true))
	}
	if res.Unit != "alpha" {
		t.Fatalf("wrong unit name: %q", res.Unit)
	}

	out, err := os.ReadFile(filepath.Join(dir, "alpha.c"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(out) != res.Text {
		t.Fatal("file content does not match result text")
	}
	if !strings.Contains(res.Text, "int32_t ident(int32_t _0)") {
		t.Fatalf("function missing from output:\n%s", res.Text)
	}
	if res.Timing == nil || len(res.Timing.Phases) == 0 {
		t.Fatal("timing report missing")
	}
}

func TestLowerFileDryRun(t *testing.T) {
	dir := t.TempDir()
	m, in := identityModule("alpha")
	path := writeModule(t, dir, "alpha.mir", m, in)

	res, err := LowerFile(context.Background(), path, Options{DryRun: true})
	if err != nil {
		t.Fatalf("LowerFile failed: %v", err)
	}
	if res.Text == "" {
		t.Fatal("dry run produced no text")
	}
	if _, err := os.Stat(filepath.Join(dir, "alpha.c")); !os.IsNotExist(err) {
		t.Fatal("dry run must not write output")
	}
}

func TestLowerFileReportsCorruptInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.mir")
	if err := os.WriteFile(path, []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	res, err := LowerFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("corrupt input must not fail the driver: %v", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("expected a decode diagnostic")
	}
	if res.Bag.Items()[0].Code != diag.IrDecodeFailed {
		t.Fatalf("wrong code: %v", res.Bag.Items()[0].Code)
	}
}

func TestLowerFileReportsSkippedFunction(t *testing.T) {
	dir := t.TempDir()
	b := testkit.NewBuilder("mixed")
	bt := b.Types.Builtins()

	fb := b.Func("bad", bt.I32)
	c := fb.Param("c", bt.Bool)
	out := fb.Local("out", bt.I32)
	blk := fb.Block()
	blk.Assign(out, testkit.Cast(testkit.LocalOp(bt.Bool, c), bt.I32))
	blk.Return(testkit.LocalOp(bt.I32, out))

	fb = b.Func("good", bt.I32)
	x := fb.Param("x", bt.I32)
	blk = fb.Block()
	blk.Return(testkit.LocalOp(bt.I32, x))

	path := writeModule(t, dir, "mixed.mir", b.Module(), b.Types)
	res, err := LowerFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("LowerFile failed: %v", err)
	}

	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.CgenUnsupportedOp && d.Primary.Function == "bad" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing skip diagnostic:\n%s", diag.FormatDiagnostics(res.Bag.Items(), true))
	}
	// The sibling function still made it into the written unit.
	out2, err := os.ReadFile(filepath.Join(dir, "mixed.c"))
	if err != nil {
		t.Fatalf("unit not written despite partial failure: %v", err)
	}
	if !strings.Contains(string(out2), "int32_t good(int32_t _0)") {
		t.Fatalf("sibling function missing:\n%s", out2)
	}
}

func TestLowerDir(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	for _, unit := range []string{"alpha", "beta", "gamma"} {
		m, in := identityModule(unit)
		writeModule(t, dir, unit+".mir", m, in)
	}

	results, err := LowerDir(context.Background(), dir, Options{OutDir: outDir, Jobs: 2})
	if err != nil {
		t.Fatalf("LowerDir failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// Input order is sorted by path.
	for i, unit := range []string{"alpha", "beta", "gamma"} {
		if results[i].Unit != unit {
			t.Fatalf("result %d is %q, want %q", i, results[i].Unit, unit)
		}
		if _, err := os.Stat(filepath.Join(outDir, unit+".c")); err != nil {
			t.Fatalf("missing output for %s: %v", unit, err)
		}
	}
}

func TestLowerDirEmpty(t *testing.T) {
	results, err := LowerDir(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("LowerDir failed on empty dir: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestLowerDirDeterministic(t *testing.T) {
	dir := t.TempDir()
	m, in := identityModule("alpha")
	writeModule(t, dir, "alpha.mir", m, in)

	first, err := LowerDir(context.Background(), dir, Options{DryRun: true})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := LowerDir(context.Background(), dir, Options{DryRun: true})
		if err != nil {
			t.Fatalf("repeat run failed: %v", err)
		}
		if again[0].Text != first[0].Text {
			t.Fatal("lowering is not deterministic across runs")
		}
	}
}
