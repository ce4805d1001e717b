package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ferroc/internal/mir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.mir>",
	Short: "Print a serialized MIR module in readable form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %q: %w", args[0], err)
		}
		defer f.Close()

		mod, typesIn, err := mir.DecodeModule(f)
		if err != nil {
			return fmt.Errorf("failed to decode %q: %w", args[0], err)
		}
		return mir.DumpModule(cmd.OutOrStdout(), mod, typesIn, mir.DumpOptions{})
	},
}
