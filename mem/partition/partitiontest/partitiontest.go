// Package partitiontest builds partition tables for tests.
package partitiontest

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memsim/mem/partition"
)

// Layout builds a table from a compact layout description, numbering the
// partitions 1..n in order.
//
// Each element is either "F<size>" for a free partition or "<owner>=<size>"
// for an occupied one:
//
//	tbl := partitiontest.Layout(t, "A=10", "F5", "B=15", "F20")
func Layout(t testing.TB, layout ...string) *partition.Table {
	t.Helper()

	parts := make([]partition.Partition, 0, len(layout))
	total := 0
	for i, s := range layout {
		id := partition.ID(i + 1)
		var p partition.Partition
		if owner, size, ok := strings.Cut(s, "="); ok {
			n, err := strconv.Atoi(size)
			require.NoError(t, err, "layout element %q", s)
			p = partition.Occupied(id, n, owner)
		} else {
			require.True(t, strings.HasPrefix(s, "F"), "layout element %q", s)
			n, err := strconv.Atoi(s[1:])
			require.NoError(t, err, "layout element %q", s)
			p = partition.Free(id, n)
		}
		total += p.Size
		parts = append(parts, p)
	}

	tbl, err := partition.Restore(total, parts)
	require.NoError(t, err)
	return tbl
}

// Describe renders a table in the notation accepted by Layout.
func Describe(tbl *partition.Table) []string {
	out := make([]string, 0, tbl.Len())
	for _, p := range tbl.Partitions() {
		if p.IsFree() {
			out = append(out, "F"+strconv.Itoa(p.Size))
			continue
		}
		out = append(out, p.Owner+"="+strconv.Itoa(p.Size))
	}
	return out
}

// RequireValid fails the test if tbl breaks any invariant.
func RequireValid(t testing.TB, tbl *partition.Table) {
	t.Helper()
	require.NoError(t, tbl.Verify(), "table %v", Describe(tbl))
}
