package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joshuapare/memsim/cmd/memsim/tui"
	"github.com/joshuapare/memsim/internal/logger"
	"github.com/joshuapare/memsim/internal/session"
	"github.com/joshuapare/memsim/mem/printer"
	"github.com/joshuapare/memsim/mem/strategy"
	"github.com/joshuapare/memsim/mem/trace"
)

var (
	tuiTotal     int
	tuiStrategy  string
	tuiProcesses []string
)

func init() {
	cmd := newTUICmd()
	cmd.Flags().IntVar(&tuiTotal, "total", 0, "Total memory size (required)")
	cmd.Flags().StringVar(&tuiStrategy, "strategy", "first fit", "Placement strategy: first, best or worst fit")
	cmd.Flags().StringArrayVar(&tuiProcesses, "process", nil, "Initial process as name=size, repeatable")
	rootCmd.AddCommand(cmd)
}

func newTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the simulator in a full-screen terminal UI",
		Long: `The tui command runs the same session as run, driven from a
full-screen view: a for allocate, d for deallocate, c for compact,
m for merge, y to copy the report, ? for help and q to exit.

Example:
  memsim tui --total 100 --strategy worst --process P1=30 --process P2=40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}
	return cmd
}

func runTUI(ctx context.Context) error {
	if tuiTotal <= 0 {
		return errors.New("--total is required and must be positive")
	}
	strat, err := strategy.Parse(tuiStrategy)
	if err != nil {
		return err
	}
	procs, err := parseProcessFlags(tuiProcesses)
	if err != nil {
		return err
	}

	rec := trace.Nop()
	if traceDB != "" {
		db, err := trace.OpenSQLite(ctx, traceDB)
		if err != nil {
			return err
		}
		rec = db
	}

	m, err := tui.New(ctx, session.Config{
		Total:    tuiTotal,
		Strategy: strat,
		Printer:  printer.Options{ShowUsage: verbose},
		Recorder: rec,
		Logger:   logger.L,
	}, procs)
	if err != nil {
		rec.Close()
		return err
	}
	defer m.Session().Close()

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return err
	}
	if fm, ok := final.(tui.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
