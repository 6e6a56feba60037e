package printer

import (
	"bufio"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joshuapare/memsim/mem/partition"
)

// printStatusText prints the report in the simulator's text format.
func (p *Printer) printStatusText(src Source) error {
	r := BuildReport(src, p.opts.ShowUsage)
	w := bufio.NewWriter(p.writer)

	if p.opts.ShowMap {
		fmt.Fprintf(w, "\n%s\n", p.render(p.styles.heading, "Memory Map:"))
		fmt.Fprintf(w, "[%s]\n", p.memoryMap(r.Partitions))
	}

	fmt.Fprintf(w, "\n%s\n", p.render(p.styles.heading, "Partition Status:"))
	for _, e := range r.Partitions {
		if e.Free {
			fmt.Fprintf(w, "Partition %d: Size=%d, Free=%s\n", e.ID, e.Size, p.render(p.styles.free, "true"))
			continue
		}
		fmt.Fprintf(w, "Partition %d: Size=%d, Free=false, Process=%s\n",
			e.ID, e.Size, p.render(p.styles.owner, e.Owner))
	}

	fmt.Fprintf(w, "\n%s\n", p.render(p.styles.heading, "Free Partitions:"))
	for _, e := range r.Free {
		fmt.Fprintf(w, "Free Partition %d: Size=%d\n", e.ID, e.Size)
	}

	fmt.Fprintf(w, "\n%s\n", p.render(p.styles.heading, "External Fragmentation:"))
	fmt.Fprintf(w, "Total Free Memory: %d\n", r.TotalFree)

	if u := r.Usage; u != nil {
		fmt.Fprintf(w, "Largest Free Block: %d\n", u.LargestFree)
		fmt.Fprintf(w, "Free Blocks: %d\n", u.FreeBlocks)
		fmt.Fprintf(w, "Fragmentation: %.1f%%\n", u.Fragmentation*100)
	}

	return w.Flush()
}

// memoryMap draws the address space as MapWidth cells. Each partition gets
// the cells between its scaled start and end offsets, so a partition smaller
// than one cell may not show up.
func (p *Printer) memoryMap(entries []partition.Entry) string {
	total := 0
	for _, e := range entries {
		total += e.Size
	}
	if total == 0 {
		return ""
	}

	width := p.opts.MapWidth
	var b strings.Builder
	offset, used := 0, 0
	for _, e := range entries {
		start := offset * width / total
		offset += e.Size
		cells := offset*width/total - start
		if cells == 0 {
			continue
		}
		if e.Free {
			b.WriteString(p.render(p.styles.mapFree, strings.Repeat(".", cells)))
			continue
		}
		r, _ := utf8.DecodeRuneInString(e.Owner)
		seg := strings.Repeat(string(r), cells)
		b.WriteString(p.render(p.styles.mapUsed[used%len(p.styles.mapUsed)], seg))
		used++
	}
	return b.String()
}
