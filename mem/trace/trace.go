package trace

import (
	"context"

	"github.com/rs/xid"

	"github.com/joshuapare/memsim/mem/partition"
)

// Operation names.
const (
	OpAllocate   = "allocate"
	OpDeallocate = "deallocate"
	OpCompact    = "compact"
	OpMerge      = "merge"
)

// Outcome names.
const (
	OutcomeOK       = "ok"
	OutcomeNoFit    = "no_fit"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
)

// Event is one recorded operation.
type Event struct {
	Session     string
	Seq         int
	Op          string
	Process     string
	Size        int
	PartitionID uint64
	Outcome     string
	Detail      string
	Compacted   bool
	TotalFree   int
	Partitions  int

	// Table is the settled partition table after the operation.
	Table []partition.Entry `structs:"-"`
}

// Recorder stores events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Close() error
}

// NewSessionID returns a new globally unique session id.
func NewSessionID() string {
	return xid.New().String()
}

// Nop returns a recorder that discards everything.
func Nop() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) error { return nil }
func (nopRecorder) Close() error                        { return nil }
