package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ferroc/internal/backend/cgen"
	"ferroc/internal/diag"
	"ferroc/internal/mir"
	"ferroc/internal/observ"
	"ferroc/internal/trace"
)

// Options configures a lowering run.
type Options struct {
	// OutDir receives the emitted .c files. Empty means next to the input.
	OutDir string
	// MaxDiagnostics caps the per-unit diagnostic bag.
	MaxDiagnostics int
	// Jobs bounds lowering parallelism; zero or negative means GOMAXPROCS.
	Jobs int
	// DryRun lowers without writing output files.
	DryRun bool
	// Tracer receives phase events. Nil disables tracing.
	Tracer trace.Tracer
	// Timings enables per-unit phase timing.
	Timings bool
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 256
	}
	return o.MaxDiagnostics
}

func (o Options) tracer() trace.Tracer {
	if o.Tracer == nil {
		return trace.Nop
	}
	return o.Tracer
}

// UnitResult is the outcome of lowering one serialized module.
type UnitResult struct {
	// Path is the input file.
	Path string
	// Unit is the module name carried by the input.
	Unit string
	// OutPath is where the C text was (or would be) written.
	OutPath string
	// Text is the emitted C unit, empty when lowering failed outright.
	Text string
	// Bag holds every diagnostic produced for this unit.
	Bag *diag.Bag
	// Timing is present when Options.Timings was set.
	Timing *observ.Report
}

// LowerFile decodes one serialized module, validates it, lowers it to C and
// writes the result. Per-function lowering failures land in the bag; only
// I/O and decode problems keep the unit from being written.
func LowerFile(ctx context.Context, path string, opts Options) (UnitResult, error) {
	res := UnitResult{
		Path: path,
		Bag:  diag.NewBag(opts.maxDiagnostics()),
	}
	tr := opts.tracer()
	timer := observ.NewTimer()
	span := trace.BeginSpan(tr, trace.ScopeUnit, filepath.Base(path))
	defer func() { span.End(res.Unit) }()

	if err := ctx.Err(); err != nil {
		return res, err
	}

	phase := timer.Begin("decode")
	data, err := os.ReadFile(path)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.DrvReadFailed,
			diag.Locus{Unit: path, Block: diag.NoIndex, Instr: diag.NoIndex},
			"failed to read input: "+err.Error()))
		return res, nil
	}
	mod, typesIn, err := mir.DecodeModule(bytes.NewReader(data))
	timer.End(phase, fmt.Sprintf("%d bytes", len(data)))
	if err != nil {
		res.Bag.Add(diag.NewError(decodeCode(err),
			diag.Locus{Unit: path, Block: diag.NoIndex, Instr: diag.NoIndex},
			"failed to decode module: "+err.Error()))
		return res, nil
	}
	res.Unit = mod.Name
	res.OutPath = outPath(path, opts.OutDir)

	phase = timer.Begin("validate")
	verr := mir.Validate(mod, typesIn)
	timer.End(phase, "")
	if verr != nil {
		addValidationDiags(res.Bag, mod.Name, verr)
		return res, nil
	}

	phase = timer.Begin("lower")
	unit, err := cgen.EmitUnit(mod, typesIn)
	timer.End(phase, fmt.Sprintf("%d funcs", len(mod.Funcs)))
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IrMalformed,
			diag.Locus{Unit: mod.Name, Block: diag.NoIndex, Instr: diag.NoIndex},
			"failed to lower unit: "+err.Error()))
		return res, nil
	}
	for i := range unit.Failures {
		addFailureDiag(res.Bag, mod.Name, &unit.Failures[i])
	}
	res.Text = unit.Text

	if !opts.DryRun {
		phase = timer.Begin("write")
		err = os.WriteFile(res.OutPath, []byte(unit.Text), 0o644)
		timer.End(phase, res.OutPath)
		if err != nil {
			res.Bag.Add(diag.NewError(diag.DrvWriteFailed,
				diag.Locus{Unit: mod.Name, Block: diag.NoIndex, Instr: diag.NoIndex},
				"failed to write output: "+err.Error()))
			return res, nil
		}
	}

	if opts.Timings {
		rep := timer.Report()
		res.Timing = &rep
	}
	return res, nil
}

func outPath(inPath, outDir string) string {
	base := filepath.Base(inPath)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".c"
	if outDir == "" {
		return filepath.Join(filepath.Dir(inPath), base)
	}
	return filepath.Join(outDir, base)
}

func decodeCode(err error) diag.Code {
	if errors.Is(err, mir.ErrUnknownSchema) {
		return diag.IrUnknownSchema
	}
	return diag.IrDecodeFailed
}

// addValidationDiags flattens a joined validation error into one
// diagnostic per underlying problem.
func addValidationDiags(bag *diag.Bag, unit string, err error) {
	locus := diag.Locus{Unit: unit, Block: diag.NoIndex, Instr: diag.NoIndex}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			bag.Add(diag.NewError(diag.IrMalformed, locus, e.Error()))
		}
		return
	}
	bag.Add(diag.NewError(diag.IrMalformed, locus, err.Error()))
}

// addFailureDiag converts one per-function lowering failure. The function
// is reported as skipped; the cause picks the specific code.
func addFailureDiag(bag *diag.Bag, unit string, f *cgen.FuncFailure) {
	locus := diag.Locus{Unit: unit, Function: f.Func, Block: diag.NoIndex, Instr: diag.NoIndex}
	code := diag.CgenFuncSkipped

	var unsupportedTy *cgen.UnsupportedTypeError
	var unsupportedOp *cgen.UnsupportedOperationError
	var malformed *cgen.MalformedIRError
	switch {
	case errors.As(f.Err, &unsupportedTy):
		code = diag.CgenUnsupported
	case errors.As(f.Err, &unsupportedOp):
		code = diag.CgenUnsupportedOp
	case errors.As(f.Err, &malformed):
		code = diag.IrMalformed
		if malformed.Block >= 0 {
			locus.Block = malformed.Block
			locus.Instr = malformed.Instr
		}
	}

	bag.Add(diag.NewError(code, locus, f.Err.Error()).
		WithNote("function skipped; the rest of the unit was still emitted"))
}
