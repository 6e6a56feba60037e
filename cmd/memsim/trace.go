package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/joshuapare/memsim/mem/trace"
)

var traceSession string

func init() {
	cmd := newTraceCmd()
	cmd.Flags().StringVar(&traceSession, "session", "", "Only show events from this session")
	rootCmd.AddCommand(cmd)
}

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <trace.sqlite3>",
		Short: "Show a recorded trace",
		Long: `The trace command lists the operations recorded with --trace-db.

Example:
  memsim trace trace.sqlite3
  memsim trace trace.sqlite3 --session d3k1v5o8b2lq3s9cq7ag --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), args[0])
		},
	}
	return cmd
}

func runTrace(ctx context.Context, path string) error {
	events, err := trace.Load(ctx, path)
	if err != nil {
		return err
	}
	if traceSession != "" {
		kept := events[:0]
		for _, ev := range events {
			if ev.Session == traceSession {
				kept = append(kept, ev)
			}
		}
		events = kept
	}

	if jsonOut {
		if events == nil {
			events = []trace.Event{}
		}
		return printJSON(events)
	}

	if len(events) == 0 {
		printInfo("No events\n")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SESSION", "SEQ", "OP", "PROCESS", "SIZE", "PARTITION", "OUTCOME", "FREE", "PARTS")
	if !noColor && isTerminal(os.Stdout) {
		header := lipgloss.NewStyle().Bold(true)
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})
	}
	for _, ev := range events {
		t.Row(
			ev.Session,
			strconv.Itoa(ev.Seq),
			ev.Op,
			ev.Process,
			optional(ev.Size),
			optional(int(ev.PartitionID)),
			outcome(ev),
			strconv.Itoa(ev.TotalFree),
			strconv.Itoa(ev.Partitions),
		)
	}
	printInfo("%s\n", t.Render())
	printVerbose("%d event(s)\n", len(events))
	return nil
}

func optional(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func outcome(ev trace.Event) string {
	if ev.Compacted {
		return fmt.Sprintf("%s (compacted)", ev.Outcome)
	}
	return ev.Outcome
}
