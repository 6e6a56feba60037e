// Package alloc is the allocation engine of the partition simulator.
//
// # Overview
//
// An Engine owns one partition table and a placement strategy fixed for the
// life of the engine. It provides the mutating operations:
//
//   - Allocate(name, size): place a process, compacting once on a miss
//   - Deallocate(name): free a process's partition and coalesce
//   - Merge(): coalesce adjacent free partitions
//   - Compact(): slide occupied partitions to the front
//
// # Usage Example
//
//	e, err := alloc.New(100, strategy.FirstFit)
//	if err != nil {
//	    return err
//	}
//
//	a, err := e.Allocate("P1", 30)
//	if errors.Is(err, alloc.ErrNoFit) {
//	    // report and carry on; the table may have been compacted
//	}
//	fmt.Println("allocated to partition", a.ID)
//
//	_, err = e.Deallocate("P1")
//
// # Allocation
//
// The strategy picks a free partition. If none fits, the engine compacts the
// table and asks the strategy once more. A partition larger than the request
// is split: the head keeps its number and becomes occupied, the remainder
// gets a new number and stays free. An exact fit is taken in place.
//
// A failed allocation that triggered compaction leaves the table compacted.
//
// # Atomicity
//
// Every operation edits a clone of the table and swaps it in only after the
// clone passes Verify. An operation that returns an error has not changed
// the table, apart from the compaction noted above.
//
// # Thread Safety
//
// Engines are not safe for concurrent use. The simulator drives one call at
// a time.
package alloc
