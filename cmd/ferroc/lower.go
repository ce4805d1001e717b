package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ferroc/internal/diag"
	"ferroc/internal/driver"
)

var (
	lowerOutDir string
	lowerJobs   int
	lowerDryRun bool
)

func init() {
	lowerCmd.Flags().StringVarP(&lowerOutDir, "out-dir", "o", "", "directory for emitted .c files (default: next to input)")
	lowerCmd.Flags().IntVarP(&lowerJobs, "jobs", "j", 0, "number of parallel lowering jobs (0 = GOMAXPROCS)")
	lowerCmd.Flags().BoolVar(&lowerDryRun, "dry-run", false, "lower without writing output files")
}

var lowerCmd = &cobra.Command{
	Use:   "lower [path]",
	Short: "Lower serialized MIR to C compilation units",
	Long: `Lower reads one .mir file, or every .mir file under a directory,
and emits one self-contained .c unit per input.

With no path the project manifest's source directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyColorMode(cmd)
		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		timings, _ := cmd.Root().PersistentFlags().GetBool("timings")
		maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

		tracer, cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		input, outDir, err := resolveLowerInput(args)
		if err != nil {
			return err
		}
		if lowerOutDir != "" {
			outDir = lowerOutDir
		}
		if outDir != "" {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		opts := driver.Options{
			OutDir:         outDir,
			MaxDiagnostics: maxDiagnostics,
			Jobs:           lowerJobs,
			DryRun:         lowerDryRun,
			Tracer:         tracer,
			Timings:        timings,
		}

		info, err := os.Stat(input)
		if err != nil {
			return fmt.Errorf("failed to stat %q: %w", input, err)
		}

		var results []driver.UnitResult
		if info.IsDir() {
			results, err = driver.LowerDir(cmd.Context(), input, opts)
		} else {
			var res driver.UnitResult
			res, err = driver.LowerFile(cmd.Context(), input, opts)
			results = []driver.UnitResult{res}
		}
		if err != nil {
			return err
		}

		return reportResults(cmd, results, quiet, timings)
	},
}

// reportResults prints diagnostics and timing, and decides the exit status.
// Any unit with error diagnostics fails the run, after every unit has been
// processed and reported.
func reportResults(cmd *cobra.Command, results []driver.UnitResult, quiet, timings bool) error {
	errOut := cmd.ErrOrStderr()
	failed := 0
	for _, res := range results {
		res.Bag.Sort()
		if res.Bag.Len() > 0 {
			fmt.Fprintln(errOut, diag.FormatDiagnostics(res.Bag.Items(), true))
		}
		if res.Bag.HasErrors() {
			failed++
			continue
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.Path, res.OutPath)
		}
		if timings && res.Timing != nil {
			fmt.Fprintf(errOut, "%s:\n", res.Unit)
			for _, p := range res.Timing.Phases {
				fmt.Fprintf(errOut, "  %-12s %7.2f ms  %s\n", p.Name, p.DurationMS, p.Note)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(results))
	}
	return nil
}

// applyColorMode maps the --color flag onto the global color switch.
func applyColorMode(cmd *cobra.Command) {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}
