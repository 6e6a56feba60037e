package partition

import "fmt"

// Rule names reported by ValidationError.
const (
	RuleTotal     = "Total"
	RuleSize      = "Size"
	RuleOwner     = "Owner"
	RuleCoalesced = "Coalesced"
)

// ValidationError describes a broken table invariant.
type ValidationError struct {
	Rule    string
	Message string
	Index   int // -1 when the violation is not tied to one partition
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s at index %d: %s", e.Rule, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

// Verify checks every table invariant.
// Returns the first violation found, or nil.
func (t *Table) Verify() error {
	if err := t.VerifyLayout(); err != nil {
		return err
	}
	return t.VerifyCoalesced()
}

// VerifyLayout checks sizes, the size total and owner uniqueness.
func (t *Table) VerifyLayout() error {
	sum := 0
	owners := make(map[string]int, len(t.parts))
	for i, p := range t.parts {
		if p.Size <= 0 {
			return &ValidationError{
				Rule:    RuleSize,
				Message: fmt.Sprintf("partition %d has size %d", p.ID, p.Size),
				Index:   i,
			}
		}
		sum += p.Size
		if p.IsFree() {
			continue
		}
		if prev, dup := owners[p.Owner]; dup {
			return &ValidationError{
				Rule:    RuleOwner,
				Message: fmt.Sprintf("owner %q also holds index %d", p.Owner, prev),
				Index:   i,
			}
		}
		owners[p.Owner] = i
	}
	if sum != t.total {
		return &ValidationError{
			Rule:    RuleTotal,
			Message: fmt.Sprintf("sizes sum to %d, total is %d", sum, t.total),
			Index:   -1,
		}
	}
	return nil
}

// VerifyCoalesced checks that no two adjacent partitions are both free.
func (t *Table) VerifyCoalesced() error {
	for i := 1; i < len(t.parts); i++ {
		if t.parts[i-1].IsFree() && t.parts[i].IsFree() {
			return &ValidationError{
				Rule: RuleCoalesced,
				Message: fmt.Sprintf("free partitions %d and %d are adjacent",
					t.parts[i-1].ID, t.parts[i].ID),
				Index: i - 1,
			}
		}
	}
	return nil
}
