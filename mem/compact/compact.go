// Package compact slides every occupied partition to the low end of the
// address space and folds all free memory into one trailing block.
package compact

import (
	"github.com/joshuapare/memsim/mem/partition"
)

// Result describes what a compaction did.
type Result struct {
	// Moved counts occupied partitions whose index changed.
	Moved int `json:"moved"`

	// FreeBlocksMerged counts the free partitions folded into the trailing block.
	FreeBlocksMerged int `json:"free_blocks_merged"`

	// Free is the size of the trailing free block, 0 if memory is full.
	Free int `json:"free"`
}

// Compact returns a compacted copy of t. The input table is left untouched.
//
// Every partition in the result gets a fresh number: occupied partitions are
// renumbered in address order first, then the trailing free block (if any).
func Compact(t *partition.Table) (*partition.Table, Result, error) {
	// Mint from a clone so t's sequence does not advance.
	ids := t.Clone()

	var res Result
	parts := make([]partition.Partition, 0, t.Len())
	for i, p := range t.Partitions() {
		if p.IsFree() {
			res.Free += p.Size
			res.FreeBlocksMerged++
			continue
		}
		if i != len(parts) {
			res.Moved++
		}
		parts = append(parts, partition.Occupied(ids.MintID(), p.Size, p.Owner))
	}
	if res.Free > 0 {
		parts = append(parts, partition.Free(ids.MintID(), res.Free))
	}

	next, err := ids.Rebuild(parts)
	if err != nil {
		return nil, Result{}, err
	}
	return next, res, nil
}
