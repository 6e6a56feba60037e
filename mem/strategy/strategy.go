package strategy

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/joshuapare/memsim/mem/partition"
)

// ErrUnknown indicates a strategy name that does not match any policy.
var ErrUnknown = errors.New("strategy: unknown placement strategy")

// Strategy is a placement policy.
type Strategy uint8

const (
	FirstFit Strategy = iota + 1
	BestFit
	WorstFit
)

// All returns every strategy in declaration order.
func All() []Strategy {
	return []Strategy{FirstFit, BestFit, WorstFit}
}

func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "first fit"
	case BestFit:
		return "best fit"
	case WorstFit:
		return "worst fit"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the defined strategies.
func (s Strategy) Valid() bool {
	return s >= FirstFit && s <= WorstFit
}

var folder = cases.Fold()

// Parse resolves a strategy name. Matching ignores case, spaces, hyphens and
// underscores, and the "fit" suffix is optional: "First Fit", "first-fit",
// "FIRST_FIT" and "first" all name FirstFit.
func Parse(name string) (Strategy, error) {
	key := folder.String(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	key = strings.TrimSuffix(key, "fit")

	switch key {
	case "first":
		return FirstFit, nil
	case "best":
		return BestFit, nil
	case "worst":
		return WorstFit, nil
	}
	return 0, fmt.Errorf("%w: %q (want first fit, best fit or worst fit)", ErrUnknown, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknown, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Select returns the index of the free partition that should receive an
// allocation of the given size, or false if none is large enough.
func (s Strategy) Select(t *partition.Table, size int) (int, bool) {
	if size <= 0 {
		return -1, false
	}
	switch s {
	case FirstFit:
		return firstFit(t, size)
	case BestFit:
		return bestFit(t, size)
	case WorstFit:
		return worstFit(t, size)
	default:
		return -1, false
	}
}
