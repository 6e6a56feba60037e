package partition

import (
	"fmt"
	"slices"

	"github.com/joshuapare/memsim/internal/idgen"
)

// Table is the ordered partition list of one simulated address space.
type Table struct {
	parts []Partition
	total int
	ids   idgen.Generator
}

// New creates a table holding a single free partition of the given size.
// The partition is numbered 1.
func New(total int) (*Table, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTotal, total)
	}
	t := &Table{total: total}
	t.parts = []Partition{Free(t.ids.Next(), total)}
	return t, nil
}

// Restore builds a table from an existing partition layout, for example one
// read back from a trace. Numbering continues after the highest id in parts.
// The result is checked with VerifyLayout.
func Restore(total int, parts []Partition) (*Table, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTotal, total)
	}
	var last ID
	for _, p := range parts {
		last = max(last, p.ID)
	}
	t := &Table{
		parts: slices.Clone(parts),
		total: total,
		ids:   idgen.After(last),
	}
	if err := t.VerifyLayout(); err != nil {
		return nil, err
	}
	return t, nil
}

// Len returns the number of partitions.
func (t *Table) Len() int { return len(t.parts) }

// At returns the partition at index i. It panics if i is out of range.
func (t *Table) At(i int) Partition { return t.parts[i] }

// Total returns the size of the address space.
func (t *Table) Total() int { return t.total }

// LastID returns the most recently minted partition number.
func (t *Table) LastID() ID { return t.ids.Last() }

// Partitions returns a copy of the partitions in address order.
func (t *Table) Partitions() []Partition {
	return slices.Clone(t.parts)
}

// MintID issues a fresh partition number from the table's sequence.
func (t *Table) MintID() ID {
	return t.ids.Next()
}

// Clone returns an independent copy of the table, including its id sequence.
func (t *Table) Clone() *Table {
	return &Table{
		parts: slices.Clone(t.parts),
		total: t.total,
		ids:   t.ids,
	}
}

// Rebuild returns a new table over the same address space holding parts.
// Numbering continues from t. The sizes must add up to the total.
func (t *Table) Rebuild(parts []Partition) (*Table, error) {
	sum := 0
	for i, p := range parts {
		if p.Size <= 0 {
			return nil, fmt.Errorf("%w: index %d has size %d", ErrInvalidSize, i, p.Size)
		}
		sum += p.Size
	}
	if sum != t.total {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, sum, t.total)
	}
	return &Table{
		parts: slices.Clone(parts),
		total: t.total,
		ids:   t.ids,
	}, nil
}

// ReplaceAt overwrites the partition at index i.
// The caller is responsible for keeping the total size unchanged.
func (t *Table) ReplaceAt(i int, p Partition) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: replacing index %d with size %d", ErrInvalidSize, i, p.Size)
	}
	t.parts[i] = p
	return nil
}

// InsertAfter places p immediately after index i.
// The caller is responsible for keeping the total size unchanged.
func (t *Table) InsertAfter(i int, p Partition) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: inserting after index %d with size %d", ErrInvalidSize, i, p.Size)
	}
	t.parts = slices.Insert(t.parts, i+1, p)
	return nil
}

// RemoveAt drops the partition at index i.
// The caller is responsible for keeping the total size unchanged.
func (t *Table) RemoveAt(i int) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	t.parts = slices.Delete(t.parts, i, i+1)
	return nil
}

// TotalFree returns the combined size of all free partitions.
func (t *Table) TotalFree() int {
	free := 0
	for _, p := range t.parts {
		if p.IsFree() {
			free += p.Size
		}
	}
	return free
}

// FindOwner returns the index of the first occupied partition held by name.
func (t *Table) FindOwner(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for i, p := range t.parts {
		if p.Owner == name {
			return i, true
		}
	}
	return -1, false
}

// Snapshot returns the reporting view of every partition in address order.
func (t *Table) Snapshot() []Entry {
	out := make([]Entry, len(t.parts))
	for i, p := range t.parts {
		out[i] = Entry{
			ID:    p.ID,
			Size:  p.Size,
			Free:  p.IsFree(),
			Owner: p.Owner,
		}
	}
	return out
}

func (t *Table) checkIndex(i int) error {
	if i < 0 || i >= len(t.parts) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndex, i, len(t.parts))
	}
	return nil
}
