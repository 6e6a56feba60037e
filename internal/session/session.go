// Package session drives one simulator run: it forwards requests to the
// allocation engine, prints the settled table after every mutation and
// records each operation.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joshuapare/memsim/internal/config"
	"github.com/joshuapare/memsim/mem/alloc"
	"github.com/joshuapare/memsim/mem/printer"
	"github.com/joshuapare/memsim/mem/strategy"
	"github.com/joshuapare/memsim/mem/trace"
)

// Config configures a Session.
type Config struct {
	Total    int
	Strategy strategy.Strategy

	// Out receives messages and reports. Default: io.Discard
	Out io.Writer

	// Printer controls report rendering.
	Printer printer.Options

	// Recorder receives one event per operation. Default: trace.Nop()
	Recorder trace.Recorder

	// Logger receives operation logs. Default: discard
	Logger *slog.Logger

	// NoRetryCompaction disables the compact-and-retry step on a miss.
	NoRetryCompaction bool

	// Quiet suppresses messages and reports.
	Quiet bool
}

// Session is one simulator run with a fixed total and strategy.
type Session struct {
	id       string
	engine   *alloc.Engine
	printer  *printer.Printer
	recorder trace.Recorder
	log      *slog.Logger
	out      io.Writer
	quiet    bool
	seq      int
}

// New starts a session.
func New(cfg Config) (*Session, error) {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Recorder == nil {
		cfg.Recorder = trace.Nop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := trace.NewSessionID()
	log := cfg.Logger.With("session", id)

	opts := []alloc.Option{alloc.WithLogger(log)}
	if cfg.NoRetryCompaction {
		opts = append(opts, alloc.WithoutRetryCompaction())
	}
	e, err := alloc.New(cfg.Total, cfg.Strategy, opts...)
	if err != nil {
		return nil, err
	}

	log.Info("session started", "total", cfg.Total, "strategy", cfg.Strategy.String())
	return &Session{
		id:       id,
		engine:   e,
		printer:  printer.New(cfg.Out, cfg.Printer),
		recorder: cfg.Recorder,
		log:      log,
		out:      cfg.Out,
		quiet:    cfg.Quiet,
	}, nil
}

// ID returns the session id used in logs and traces.
func (s *Session) ID() string { return s.id }

// Engine returns the underlying engine for read-only inspection.
func (s *Session) Engine() *alloc.Engine { return s.engine }

// Close closes the recorder.
func (s *Session) Close() error {
	s.log.Info("session closed", "stats", s.engine.Stats())
	return s.recorder.Close()
}

// Report prints the current status report.
func (s *Session) Report() error {
	if s.quiet {
		return nil
	}
	return s.printer.PrintStatus(s.engine)
}

// AllocateAll places the processes in order, reports each failure, then
// prints one report. Failures do not stop the batch.
func (s *Session) AllocateAll(ctx context.Context, procs []config.Process) error {
	s.say("\n--- %s Allocation ---\n\n", strings.ToUpper(s.engine.Strategy().String()))
	for _, p := range procs {
		if _, err := s.allocate(ctx, p.Name, p.Size); err != nil {
			if !recoverable(err) {
				return err
			}
			s.say("Allocation failed for process %s of size %d\n", p.Name, p.Size)
		}
	}
	return s.Report()
}

// Allocate places one process and prints the report.
// Allocation failures are reported and returned; they do not end the session.
func (s *Session) Allocate(ctx context.Context, name string, size int) (alloc.Allocation, error) {
	a, err := s.allocate(ctx, name, size)
	if err != nil {
		if !recoverable(err) {
			return a, err
		}
		s.say("Allocation failed for process %s\n", name)
	}
	return a, errors.Join(err, s.Report())
}

func (s *Session) allocate(ctx context.Context, name string, size int) (alloc.Allocation, error) {
	a, err := s.engine.Allocate(name, size)
	if a.Compacted {
		s.say("Allocation failed for process %s, trying to compact memory and retry...\n", name)
		s.say("Memory Compacted\n")
	}

	ev := trace.Event{
		Op:        trace.OpAllocate,
		Process:   name,
		Size:      size,
		Compacted: a.Compacted,
	}
	switch {
	case err == nil:
		s.say("Process %s allocated to partition %d\n", name, a.ID)
		ev.PartitionID = uint64(a.ID)
		ev.Outcome = trace.OutcomeOK
		s.log.Info("allocated", "process", name, "size", size, "partition", a.ID, "split", a.Split)
	case errors.Is(err, alloc.ErrNoFit):
		ev.Outcome = trace.OutcomeNoFit
		s.log.Info("allocation failed", "process", name, "size", size, "error", err)
	default:
		ev.Outcome = trace.OutcomeRejected
		s.log.Warn("allocation rejected", "process", name, "size", size, "error", err)
	}
	if err != nil {
		ev.Detail = err.Error()
	}
	s.record(ctx, ev)
	return a, err
}

// Deallocate frees a process's partition and prints the report.
func (s *Session) Deallocate(ctx context.Context, name string) error {
	id, err := s.engine.Deallocate(name)

	ev := trace.Event{Op: trace.OpDeallocate, Process: name}
	switch {
	case err == nil:
		s.say("Deallocated process %s\n", name)
		ev.PartitionID = uint64(id)
		ev.Outcome = trace.OutcomeOK
		s.log.Info("deallocated", "process", name, "partition", id)
	case errors.Is(err, alloc.ErrProcessNotFound):
		s.say("Process %s not found in memory\n", name)
		ev.Outcome = trace.OutcomeNotFound
		ev.Detail = err.Error()
		s.log.Info("deallocation missed", "process", name)
	default:
		return err
	}
	s.record(ctx, ev)
	return errors.Join(err, s.Report())
}

// Compact compacts memory and prints the report.
func (s *Session) Compact(ctx context.Context) error {
	res, err := s.engine.Compact()
	if err != nil {
		return err
	}
	s.say("Memory Compacted\n")
	s.log.Info("compacted", "moved", res.Moved, "free", res.Free)
	s.record(ctx, trace.Event{Op: trace.OpCompact, Outcome: trace.OutcomeOK})
	return s.Report()
}

// Merge coalesces adjacent free partitions and prints the report.
func (s *Session) Merge(ctx context.Context) error {
	n, err := s.engine.Merge()
	if err != nil {
		return err
	}
	s.say("Merged %d free partition pair(s)\n", n)
	s.record(ctx, trace.Event{Op: trace.OpMerge, Outcome: trace.OutcomeOK, Size: n})
	return s.Report()
}

// Run places the scenario's processes and then performs its actions.
// The scenario's total and strategy must match the session's.
func (s *Session) Run(ctx context.Context, sc *config.Scenario) error {
	if err := s.AllocateAll(ctx, sc.Processes); err != nil {
		return err
	}
	for i, a := range sc.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch a.Op {
		case config.ActionAllocate:
			_, err = s.Allocate(ctx, a.Name, a.Size)
		case config.ActionDeallocate:
			err = s.Deallocate(ctx, a.Name)
		case config.ActionCompact:
			err = s.Compact(ctx)
		case config.ActionMerge:
			err = s.Merge(ctx)
		default:
			err = fmt.Errorf("%w: unknown op %q", config.ErrInvalidScenario, a.Op)
		}
		if err != nil && !recoverable(err) {
			return fmt.Errorf("action %d (%s): %w", i, a.Op, err)
		}
	}
	return nil
}

// record stores the event with the settled table. Recording problems are
// logged and never interrupt the simulation.
func (s *Session) record(ctx context.Context, ev trace.Event) {
	s.seq++
	ev.Session = s.id
	ev.Seq = s.seq
	ev.Table = s.engine.Snapshot()
	ev.Partitions = len(ev.Table)
	ev.TotalFree = s.engine.TotalFree()
	if err := s.recorder.Record(ctx, ev); err != nil {
		s.log.Warn("trace record failed", "seq", ev.Seq, "error", err)
	}
}

// say prints a progress message in text mode.
func (s *Session) say(format string, args ...any) {
	if s.quiet || s.printer.Options().Format != printer.FormatText {
		return
	}
	fmt.Fprintf(s.out, format, args...)
}

// recoverable reports whether err is an expected per-request failure.
func recoverable(err error) bool {
	return errors.Is(err, alloc.ErrNoFit) ||
		errors.Is(err, alloc.ErrProcessNotFound) ||
		errors.Is(err, alloc.ErrInvalidSize) ||
		errors.Is(err, alloc.ErrEmptyName) ||
		errors.Is(err, alloc.ErrDuplicateOwner)
}

// Recoverable reports whether err is a per-request failure that leaves the
// session usable.
func Recoverable(err error) bool { return recoverable(err) }
