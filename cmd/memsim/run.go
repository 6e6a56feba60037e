package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memsim/internal/config"
	"github.com/joshuapare/memsim/internal/session"
	"github.com/joshuapare/memsim/mem/strategy"
)

const actionPrompt = "\nChoose action: (d)eallocate, (c)ompact, (a)llocate new process, (m)erge, (e)xit: "

var (
	runTotal     int
	runStrategy  string
	runProcesses []string
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVar(&runTotal, "total", 0, "Total memory size (prompted when unset)")
	cmd.Flags().StringVar(&runStrategy, "strategy", "", "Placement strategy: first, best or worst fit (prompted when unset)")
	cmd.Flags().StringArrayVar(&runProcesses, "process", nil, "Initial process as name=size, repeatable (prompted when unset)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interactive simulation",
		Long: `The run command places an initial set of processes and then reads
actions from standard input: deallocate, compact, allocate, merge or exit.
Anything not given as a flag is prompted for.

Example:
  memsim run
  memsim run --total 100 --strategy "best fit" --process P1=30 --process P2=40
  printf 'd\nP1\nc\ne\n' | memsim run --total 100 --strategy first --process P1=30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			return runRun(cmd.Context(), in, os.Stdout, isTerminal(in))
		},
	}
	return cmd
}

func runRun(ctx context.Context, in io.Reader, out io.Writer, interactive bool) error {
	p := newPrompter(in, out, interactive)

	total := runTotal
	if total <= 0 {
		n, err := p.askInt("Enter total memory size: ")
		if err != nil {
			return fmt.Errorf("total memory: %w", err)
		}
		total = n
	}

	procs, err := parseProcessFlags(runProcesses)
	if err != nil {
		return err
	}
	if len(runProcesses) == 0 {
		if procs, err = askProcesses(p); err != nil {
			return err
		}
	}

	strat, err := resolveStrategy(p, runStrategy)
	if err != nil {
		return err
	}

	sess, closeSession, err := openSession(ctx, out, total, strat)
	if err != nil {
		return err
	}
	defer closeSession()

	if err := sess.AllocateAll(ctx, procs); err != nil {
		return err
	}
	return actionLoop(ctx, p, sess, out)
}

func askProcesses(p *prompter) ([]config.Process, error) {
	n, err := p.askInt("Enter number of processes: ")
	if err != nil {
		return nil, fmt.Errorf("process count: %w", err)
	}
	var procs []config.Process
	for range n {
		name, err := p.ask("Enter process name: ")
		if err != nil {
			return nil, err
		}
		size, err := p.askInt(fmt.Sprintf("Enter size for process %s: ", name))
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", name, err)
		}
		procs = addProcess(procs, config.Process{Name: name, Size: size})
	}
	return procs, nil
}

// parseProcessFlags parses name=size pairs.
func parseProcessFlags(specs []string) ([]config.Process, error) {
	var procs []config.Process
	for _, s := range specs {
		name, sizeText, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --process %q: want name=size", s)
		}
		size, err := strconv.Atoi(strings.TrimSpace(sizeText))
		if err != nil {
			return nil, fmt.Errorf("invalid --process %q: %w", s, errNotANumber)
		}
		procs = addProcess(procs, config.Process{Name: strings.TrimSpace(name), Size: size})
	}
	return procs, nil
}

// addProcess appends p, or updates the size in place when the name was
// already given, so each name is placed once at its first position.
func addProcess(procs []config.Process, p config.Process) []config.Process {
	for i := range procs {
		if procs[i].Name == p.Name {
			procs[i].Size = p.Size
			return procs
		}
	}
	return append(procs, p)
}

// resolveStrategy parses name, or prompts until a known strategy is entered.
func resolveStrategy(p *prompter, name string) (strategy.Strategy, error) {
	if name != "" {
		return strategy.Parse(name)
	}
	for {
		answer, err := p.ask("Enter allocation strategy (First Fit / Best Fit / Worst Fit): ")
		if err != nil {
			return 0, fmt.Errorf("strategy: %w", err)
		}
		s, err := strategy.Parse(answer)
		if err == nil {
			return s, nil
		}
		fmt.Fprintf(p.out, "Unknown strategy %q\n", answer)
	}
}

// actionLoop reads actions until exit or end of input.
func actionLoop(ctx context.Context, p *prompter, sess *session.Session, out io.Writer) error {
	say := func(format string, args ...any) {
		if !quiet {
			fmt.Fprintf(out, format, args...)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		action, err := p.ask(actionPrompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(action) {
		case "d":
			name, err := p.ask("Enter process name to deallocate: ")
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			err = sess.Deallocate(ctx, name)
			if err != nil && !session.Recoverable(err) {
				return err
			}
		case "c":
			if err := sess.Compact(ctx); err != nil {
				return err
			}
		case "a":
			name, err := p.ask("Enter new process name: ")
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			size, err := p.askInt(fmt.Sprintf("Enter size for process %s: ", name))
			switch {
			case errors.Is(err, io.EOF):
				return nil
			case errors.Is(err, errNotANumber):
				say("Invalid size\n")
				continue
			case err != nil:
				return err
			}
			if _, err := sess.Allocate(ctx, name, size); err != nil && !session.Recoverable(err) {
				return err
			}
		case "m":
			if err := sess.Merge(ctx); err != nil {
				return err
			}
		case "e":
			say("Exiting\n")
			return nil
		default:
			say("Invalid option\n")
		}
	}
}
