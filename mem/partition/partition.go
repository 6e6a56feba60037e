package partition

import (
	"fmt"

	"github.com/joshuapare/memsim/internal/idgen"
)

// ID is a partition number.
type ID = idgen.ID

// Partition is one contiguous run of simulated memory.
//
// A partition with an empty Owner is free. Values are never mutated in place;
// construct a new one with Free or Occupied.
type Partition struct {
	ID    ID
	Size  int
	Owner string
}

// Free returns a free partition.
func Free(id ID, size int) Partition {
	return Partition{ID: id, Size: size}
}

// Occupied returns a partition held by owner.
func Occupied(id ID, size int, owner string) Partition {
	return Partition{ID: id, Size: size, Owner: owner}
}

// IsFree reports whether no process holds the partition.
func (p Partition) IsFree() bool {
	return p.Owner == ""
}

// Release returns the same partition with its owner cleared.
func (p Partition) Release() Partition {
	return Free(p.ID, p.Size)
}

func (p Partition) String() string {
	if p.IsFree() {
		return fmt.Sprintf("#%d free(%d)", p.ID, p.Size)
	}
	return fmt.Sprintf("#%d %s(%d)", p.ID, p.Owner, p.Size)
}

// Entry is the reporting view of a partition.
type Entry struct {
	ID    ID     `json:"id"`
	Size  int    `json:"size"`
	Free  bool   `json:"free"`
	Owner string `json:"owner,omitempty"`
}
