// Package partition holds the partition table of the simulator.
//
// # Overview
//
// A Table is an ordered list of Partition values that together span the whole
// simulated address space. Position encodes adjacency: the partition at index
// i is immediately followed in memory by the one at index i+1. There are no
// gaps and no overlaps.
//
// Partitions are immutable values. Edits go through the table
// (ReplaceAt, InsertAfter, RemoveAt, Rebuild) and the allocator works on a
// Clone, verifying it before swapping it in:
//
//	next := t.Clone()
//	head := partition.Occupied(p.ID, size, "P1")
//	_ = next.ReplaceAt(i, head)
//	_ = next.InsertAfter(i, partition.Free(next.MintID(), p.Size-size))
//	if err := next.Verify(); err != nil {
//	    return err
//	}
//
// # Invariants
//
//   - the sizes of all partitions sum to the table's total
//   - every partition has a positive size
//   - an owner name appears on at most one occupied partition
//   - no two adjacent partitions are both free
//
// Verify checks all four and reports the first violation as a
// *ValidationError.
//
// # Partition Numbers
//
// Ids come from a generator that is part of the table state. A new table
// starts with a single free partition numbered 1. Only splitting and
// compaction mint new numbers; they are never reused.
//
// # Thread Safety
//
// Tables are not safe for concurrent use.
package partition
