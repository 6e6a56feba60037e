// Package printer renders the partition status report.
package printer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/memsim/mem/partition"
)

const (
	DefaultMapWidth = 50
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the human-readable status report.
	FormatText Format = "text"

	// FormatJSON outputs one JSON document per report.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// Color styles headings and partition markers (text format only).
	// Default: false
	Color bool

	// ShowMap draws a proportional memory map above the report (text format only).
	// Default: false
	ShowMap bool

	// MapWidth is the number of cells in the memory map.
	// Default: 50
	MapWidth int

	// ShowUsage adds largest free block, free block count and fragmentation.
	// Default: false
	ShowUsage bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:   FormatText,
		MapWidth: DefaultMapWidth,
	}
}

// Source is anything that can describe a partition table.
// *partition.Table and *alloc.Engine both satisfy it.
type Source interface {
	Snapshot() []partition.Entry
	Usage() partition.Usage
}

// Printer writes status reports.
type Printer struct {
	opts   Options
	writer io.Writer
	styles styles
}

type styles struct {
	heading lipgloss.Style
	free    lipgloss.Style
	owner   lipgloss.Style
	mapFree lipgloss.Style
	mapUsed []lipgloss.Style
}

// New creates a Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.MapWidth <= 0 {
		opts.MapWidth = DefaultMapWidth
	}
	r := lipgloss.NewRenderer(w)
	return &Printer{
		opts:   opts,
		writer: w,
		styles: styles{
			heading: r.NewStyle().Bold(true).Underline(true),
			free:    r.NewStyle().Foreground(lipgloss.Color("10")),
			owner:   r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
			mapFree: r.NewStyle().Faint(true),
			mapUsed: []lipgloss.Style{
				r.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15")),
				r.NewStyle().Background(lipgloss.Color("5")).Foreground(lipgloss.Color("15")),
				r.NewStyle().Background(lipgloss.Color("6")).Foreground(lipgloss.Color("0")),
			},
		},
	}
}

// Options returns the printer's options.
func (p *Printer) Options() Options { return p.opts }

// Report is the JSON form of a status report.
type Report struct {
	Partitions []partition.Entry `json:"partitions"`
	Free       []partition.Entry `json:"free"`
	TotalFree  int               `json:"total_free"`
	Usage      *partition.Usage  `json:"usage,omitempty"`
}

// BuildReport assembles the report data for src.
func BuildReport(src Source, withUsage bool) Report {
	entries := src.Snapshot()
	r := Report{
		Partitions: entries,
		Free:       []partition.Entry{},
	}
	for _, e := range entries {
		if e.Free {
			r.Free = append(r.Free, e)
			r.TotalFree += e.Size
		}
	}
	if withUsage {
		u := src.Usage()
		r.Usage = &u
	}
	return r
}

// PrintStatus writes the status report for src: every partition, then the
// free ones, then the total free memory.
func (p *Printer) PrintStatus(src Source) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printStatusJSON(src)
	case FormatText:
		return p.printStatusText(src)
	default:
		return fmt.Errorf("printer: unknown format %q", p.opts.Format)
	}
}

func (p *Printer) printStatusJSON(src Source) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(src, p.opts.ShowUsage))
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.opts.Color {
		return text
	}
	return s.Render(text)
}
