package alloc

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memsim/mem/partition"
	"github.com/joshuapare/memsim/mem/strategy"
)

// Test_RandomOperations_HoldInvariants runs seeded random operation sequences
// against every strategy and checks the table after each step.
func Test_RandomOperations_HoldInvariants(t *testing.T) {
	const total = 1000

	for _, s := range strategy.All() {
		t.Run(s.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42)) // fixed seed for reproducibility
			e, err := New(total, s)
			require.NoError(t, err)

			live := map[string]bool{}
			next := 0
			for step := range 500 {
				switch op := rng.Intn(10); {
				case op < 6:
					name := fmt.Sprintf("P%d", next)
					next++
					if _, err := e.Allocate(name, 1+rng.Intn(120)); err == nil {
						live[name] = true
					} else {
						require.ErrorIs(t, err, ErrNoFit, "step %d", step)
					}
				case op < 9:
					for name := range live {
						_, err := e.Deallocate(name)
						require.NoError(t, err, "step %d", step)
						delete(live, name)
						break
					}
				default:
					_, err := e.Compact()
					require.NoError(t, err, "step %d", step)
				}

				tbl := e.Table()
				require.NoError(t, tbl.Verify(), "step %d", step)
				require.Equal(t, total, sumSizes(tbl), "step %d", step)
				require.Equal(t, len(live), tbl.Usage().Occupied, "step %d", step)
			}
		})
	}
}

func sumSizes(t *partition.Table) int {
	sum := 0
	for _, p := range t.Partitions() {
		sum += p.Size
	}
	return sum
}
