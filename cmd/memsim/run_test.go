package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memsim/internal/config"
)

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		strategy       string
		processes      []string
		input          string
		interactive    bool
		quiet          bool
		wantErr        bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:      "scripted actions",
			total:     100,
			strategy:  "first",
			processes: []string{"P1=30", "P2=40", "P3=20"},
			input:     "d\nP2\nc\na\nP4\n45\nx\ne\n",
			wantContain: []string{
				"--- FIRST FIT Allocation ---",
				"Process P3 allocated to partition 3\n",
				"Deallocated process P2\n",
				"Memory Compacted\n",
				"Process P4 allocated to partition 7\n",
				"Invalid option\n",
				"Exiting\n",
			},
			wantNotContain: []string{"Choose action"},
		},
		{
			name:        "prompts for everything",
			input:       "100\n2\nA\n20\nB\n30\nbest fit\ne\n",
			interactive: true,
			wantContain: []string{
				"Enter total memory size: ",
				"Enter number of processes: ",
				"Enter process name: ",
				"Enter size for process B: ",
				"Enter allocation strategy (First Fit / Best Fit / Worst Fit): ",
				"--- BEST FIT Allocation ---",
				"Partition 3: Size=50, Free=true\n",
				"Choose action: (d)eallocate, (c)ompact, (a)llocate new process, (m)erge, (e)xit: ",
			},
		},
		{
			name:        "unknown strategy is asked again",
			total:       100,
			processes:   []string{"A=10"},
			input:       "next fit\nworst\ne\n",
			wantContain: []string{`Unknown strategy "next fit"`, "--- WORST FIT Allocation ---"},
		},
		{
			name:        "initial failure is reported",
			total:       100,
			strategy:    "first",
			processes:   []string{"Big=500", "A=10"},
			wantContain: []string{"Allocation failed for process Big of size 500\n", "Process A allocated to partition 2\n"},
		},
		{
			name:        "missing process",
			total:       100,
			strategy:    "first",
			processes:   []string{"A=10"},
			input:       "d\nZ\n",
			wantContain: []string{"Process Z not found in memory\n"},
		},
		{
			name:        "failed allocation",
			total:       100,
			strategy:    "first",
			processes:   []string{"A=90"},
			input:       "a\nB\n20\n",
			wantContain: []string{"Allocation failed for process B\n", "Total Free Memory: 10\n"},
		},
		{
			name:        "invalid size keeps the loop going",
			total:       100,
			strategy:    "first",
			processes:   []string{"A=10"},
			input:       "a\nX\nabc\ne\n",
			wantContain: []string{"Invalid size\n", "Exiting\n"},
		},
		{
			name:        "merge",
			total:       100,
			strategy:    "first",
			processes:   []string{"A=10"},
			input:       "m\n",
			wantContain: []string{"Merged 0 free partition pair(s)\n"},
		},
		{
			name:           "quiet",
			total:          100,
			strategy:       "first",
			processes:      []string{"A=10"},
			input:          "d\nA\ne\n",
			quiet:          true,
			wantNotContain: []string{"Partition", "Exiting"},
		},
		{
			name:    "bad total",
			input:   "lots\n",
			wantErr: true,
		},
		{
			name:      "bad strategy flag",
			total:     100,
			strategy:  "next",
			processes: []string{"A=10"},
			wantErr:   true,
		},
		{
			name:      "bad process flag",
			total:     100,
			strategy:  "first",
			processes: []string{"A"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			runTotal = tt.total
			runStrategy = tt.strategy
			runProcesses = tt.processes
			quiet = tt.quiet

			var out bytes.Buffer
			err := runRun(context.Background(), strings.NewReader(tt.input), &out, tt.interactive)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assertContains(t, out.String(), tt.wantContain)
			assertNotContains(t, out.String(), tt.wantNotContain)
			if tt.quiet {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	resetFlags(t)
	runTotal, runStrategy, runProcesses = 100, "first", []string{"A=10"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runRun(ctx, strings.NewReader("c\n"), &bytes.Buffer{}, false)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseProcessFlags(t *testing.T) {
	procs, err := parseProcessFlags([]string{"A=10", " B = 5 ", "A=20"})
	require.NoError(t, err)
	assert.Equal(t, []config.Process{{Name: "A", Size: 20}, {Name: "B", Size: 5}}, procs)

	_, err = parseProcessFlags([]string{"A"})
	require.Error(t, err)

	_, err = parseProcessFlags([]string{"A=x"})
	require.ErrorIs(t, err, errNotANumber)
}

func TestTUI_RejectsBadFlags(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		strategy  string
		processes []string
	}{
		{name: "missing total", strategy: "first"},
		{name: "unknown strategy", total: 100, strategy: "next"},
		{name: "bad process", total: 100, strategy: "first", processes: []string{"A=x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			tuiTotal, tuiStrategy, tuiProcesses = tt.total, tt.strategy, tt.processes
			require.Error(t, runTUI(context.Background()))
		})
	}
}
