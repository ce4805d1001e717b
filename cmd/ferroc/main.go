package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ferroc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ferroc",
	Short: "Ferro MIR to C lowering backend",
	Long:  `ferroc lowers serialized Ferro MIR modules to free-standing C99 compilation units`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("trace", "", "write a JSONL trace to the given file")
	rootCmd.PersistentFlags().String("trace-level", "phase", "trace detail (off|phase|detail|debug)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
