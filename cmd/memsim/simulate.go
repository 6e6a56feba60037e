package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memsim/internal/config"
)

func init() {
	rootCmd.AddCommand(newSimulateCmd())
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a scenario file",
		Long: `The simulate command runs a YAML scenario end to end: it places the
listed processes, then performs each action in order, printing a report
after every step.

Example:
  memsim simulate scenario.yaml
  memsim simulate scenario.yaml --json
  memsim simulate scenario.yaml --trace-db trace.sqlite3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context(), args[0], os.Stdout)
		},
	}
	return cmd
}

func runSimulate(ctx context.Context, path string, out io.Writer) error {
	printVerbose("Loading scenario: %s\n", path)

	sc, err := config.Load(path)
	if err != nil {
		return err
	}
	strat, err := sc.Strategy()
	if err != nil {
		return err
	}

	sess, closeSession, err := openSession(ctx, out, sc.TotalMemory, strat)
	if err != nil {
		return err
	}
	defer closeSession()

	return sess.Run(ctx, sc)
}
