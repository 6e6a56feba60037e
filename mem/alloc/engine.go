package alloc

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/memsim/mem/compact"
	"github.com/joshuapare/memsim/mem/partition"
	"github.com/joshuapare/memsim/mem/strategy"
)

// Engine allocates processes into a partition table with a fixed strategy.
type Engine struct {
	table    *partition.Table
	strategy strategy.Strategy

	// retry controls the compact-and-retry step on a miss.
	retry bool

	log   *slog.Logger
	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for allocation decisions (debug level).
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithoutRetryCompaction disables the compaction retry after a miss, so a
// miss fails immediately. Useful for comparing fragmentation across strategies.
func WithoutRetryCompaction() Option {
	return func(e *Engine) { e.retry = false }
}

// Allocation describes a successful placement.
type Allocation struct {
	ID        partition.ID `json:"id"`
	Index     int          `json:"index"`
	Size      int          `json:"size"`
	Split     bool         `json:"split"`
	Compacted bool         `json:"compacted"`
}

// New creates an engine over a fresh table of the given total size.
func New(total int, s strategy.Strategy, opts ...Option) (*Engine, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", strategy.ErrUnknown, uint8(s))
	}
	t, err := partition.New(total)
	if err != nil {
		return nil, err
	}
	return NewWithTable(t, s, opts...)
}

// NewWithTable creates an engine over an existing table. The table must be
// valid; the engine keeps its own copy.
func NewWithTable(t *partition.Table, s strategy.Strategy, opts ...Option) (*Engine, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", strategy.ErrUnknown, uint8(s))
	}
	if err := t.Verify(); err != nil {
		return nil, fmt.Errorf("alloc: invalid table: %w", err)
	}
	e := &Engine{
		table:    t.Clone(),
		strategy: s,
		retry:    true,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Strategy returns the engine's placement strategy.
func (e *Engine) Strategy() strategy.Strategy { return e.strategy }

// Table returns a copy of the current table.
func (e *Engine) Table() *partition.Table { return e.table.Clone() }

// Snapshot returns the reporting view of the current table.
func (e *Engine) Snapshot() []partition.Entry { return e.table.Snapshot() }

// TotalFree returns the combined size of all free partitions.
func (e *Engine) TotalFree() int { return e.table.TotalFree() }

// Usage returns the current usage summary.
func (e *Engine) Usage() partition.Usage { return e.table.Usage() }

// Stats returns the operation counters.
func (e *Engine) Stats() Stats { return e.stats }

// Allocate places a process of the given size.
//
// On a miss the table is compacted and the strategy consulted once more. If
// that also misses, ErrNoFit is returned and the table stays compacted;
// Allocation.Compacted reports whether that happened.
func (e *Engine) Allocate(name string, size int) (Allocation, error) {
	e.stats.AllocCalls++

	if err := e.checkRequest(name, size); err != nil {
		e.stats.AllocFailures++
		return Allocation{}, err
	}

	var a Allocation
	idx, ok := e.strategy.Select(e.table, size)
	if !ok && e.retry {
		e.log.Debug("no fit, compacting", "process", name, "size", size, "free", e.table.TotalFree())
		if _, err := e.compact(); err != nil {
			e.stats.AllocFailures++
			return Allocation{}, err
		}
		e.stats.RetryCompactions++
		a.Compacted = true
		idx, ok = e.strategy.Select(e.table, size)
	}
	if !ok {
		e.stats.AllocFailures++
		e.log.Debug("allocation failed", "process", name, "size", size, "strategy", e.strategy.String())
		return a, fmt.Errorf("%w: process %s needs %d, %d free", ErrNoFit, name, size, e.table.TotalFree())
	}

	next := e.table.Clone()
	target := next.At(idx)
	if target.Size > size {
		if err := next.ReplaceAt(idx, partition.Occupied(target.ID, size, name)); err != nil {
			return a, err
		}
		if err := next.InsertAfter(idx, partition.Free(next.MintID(), target.Size-size)); err != nil {
			return a, err
		}
		a.Split = true
	} else {
		if err := next.ReplaceAt(idx, partition.Occupied(target.ID, target.Size, name)); err != nil {
			return a, err
		}
	}
	if err := e.commit(next); err != nil {
		e.stats.AllocFailures++
		return a, err
	}

	if a.Split {
		e.stats.Splits++
	} else {
		e.stats.ExactFits++
	}
	e.stats.AllocSuccesses++

	a.ID = target.ID
	a.Index = idx
	a.Size = size
	e.log.Debug("allocated",
		"process", name,
		"size", size,
		"partition", a.ID,
		"index", idx,
		"split", a.Split,
		"compacted", a.Compacted,
	)
	return a, nil
}

// Deallocate frees the partition held by name and coalesces free space.
// Returns the number of the freed partition as it was before merging.
func (e *Engine) Deallocate(name string) (partition.ID, error) {
	e.stats.DeallocCalls++

	idx, ok := e.table.FindOwner(name)
	if !ok {
		e.stats.DeallocMisses++
		return 0, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
	}

	next := e.table.Clone()
	freed := next.At(idx)
	if err := next.ReplaceAt(idx, freed.Release()); err != nil {
		return 0, err
	}
	merges := coalesce(next)
	if err := e.commit(next); err != nil {
		return 0, err
	}
	e.stats.Merges += merges

	e.log.Debug("deallocated", "process", name, "partition", freed.ID, "merges", merges)
	return freed.ID, nil
}

// Merge coalesces every run of adjacent free partitions into its first
// partition. Returns the number of merges performed.
func (e *Engine) Merge() (int, error) {
	next := e.table.Clone()
	merges := coalesce(next)
	if merges == 0 {
		return 0, nil
	}
	if err := e.commit(next); err != nil {
		return 0, err
	}
	e.stats.Merges += merges
	return merges, nil
}

// Compact slides all occupied partitions to the front and gathers free
// memory into one trailing partition. All partitions are renumbered.
func (e *Engine) Compact() (compact.Result, error) {
	res, err := e.compact()
	if err != nil {
		return compact.Result{}, err
	}
	e.stats.Compactions++
	return res, nil
}

func (e *Engine) compact() (compact.Result, error) {
	next, res, err := compact.Compact(e.table)
	if err != nil {
		return compact.Result{}, err
	}
	if err := e.commit(next); err != nil {
		return compact.Result{}, err
	}
	e.log.Debug("compacted", "moved", res.Moved, "free", res.Free)
	return res, nil
}

func (e *Engine) checkRequest(name string, size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: process %s requested %d", ErrInvalidSize, name, size)
	}
	if name == "" {
		return ErrEmptyName
	}
	if _, held := e.table.FindOwner(name); held {
		return fmt.Errorf("%w: %s", ErrDuplicateOwner, name)
	}
	return nil
}

// commit swaps in next once it passes every invariant check.
func (e *Engine) commit(next *partition.Table) error {
	if err := next.Verify(); err != nil {
		return fmt.Errorf("alloc: refusing invalid table: %w", err)
	}
	e.table = next
	return nil
}
