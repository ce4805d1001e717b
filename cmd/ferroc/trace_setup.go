package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ferroc/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer. It
// returns the tracer plus a cleanup function that flushes and closes it.
func setupTracing(cmd *cobra.Command) (trace.Tracer, func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace level: %w", err)
	}

	if traceOutput == "" || level == trace.LevelOff {
		return trace.Nop, func() {}, nil
	}

	f, err := os.Create(traceOutput)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	tr := trace.NewStreamTracer(f, level)
	cleanup := func() {
		_ = tr.Close()
		_ = f.Close()
	}
	return tr, cleanup, nil
}
