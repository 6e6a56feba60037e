package alloc

import "github.com/joshuapare/memsim/mem/partition"

// coalesce merges adjacent free partitions in place, left to right. The
// merged partition keeps the number of the left one and is re-examined
// against its new neighbor before moving on.
func coalesce(t *partition.Table) int {
	merges := 0
	for i := 0; i < t.Len()-1; {
		cur, nxt := t.At(i), t.At(i+1)
		if !cur.IsFree() || !nxt.IsFree() {
			i++
			continue
		}
		// Indices are in range and the merged size is positive, so the
		// edits cannot fail.
		_ = t.ReplaceAt(i, partition.Free(cur.ID, cur.Size+nxt.Size))
		_ = t.RemoveAt(i + 1)
		merges++
	}
	return merges
}
