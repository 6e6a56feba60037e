// Package tui is a full-screen front end for a simulator session.
package tui

import (
	"bytes"
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/memsim/internal/config"
	"github.com/joshuapare/memsim/internal/session"
	"github.com/joshuapare/memsim/mem/printer"
)

// Lines taken by the header, status and help rows.
const chromeHeight = 4

// Model is the main application model
type Model struct {
	ctx  context.Context
	sess *session.Session
	out  *bytes.Buffer

	keys     KeyMap
	help     help.Model
	report   viewport.Model
	dialog   DialogModel
	showHelp bool

	width  int
	height int

	// Status message for temporary feedback
	statusMessage string
	err           error

	// copy writes to the system clipboard; replaced in tests.
	copy func(string) error
}

// New starts a session from cfg, places procs and returns the model showing
// the first report. cfg.Out is replaced; reports are always text with a
// memory map.
func New(ctx context.Context, cfg session.Config, procs []config.Process) (Model, error) {
	out := &bytes.Buffer{}
	cfg.Out = out
	cfg.Quiet = false
	cfg.Printer.Format = printer.FormatText
	cfg.Printer.ShowMap = true

	sess, err := session.New(cfg)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		ctx:    ctx,
		sess:   sess,
		out:    out,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		report: viewport.New(80, 20),
		copy:   clipboard.WriteAll,
	}
	m.run(func() error { return sess.AllocateAll(ctx, procs) })
	return m, nil
}

// Session returns the session driven by the model.
func (m Model) Session() *session.Session { return m.sess }

// Err returns the error that stopped the model, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.report.Width = msg.Width
		m.report.Height = max(msg.Height-chromeHeight, 1)
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			if key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.Esc) {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.dialog.IsVisible() {
			return m.updateDialog(msg)
		}
		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Esc) {
				m.showHelp = false
				m.help.ShowAll = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Allocate):
			return m, m.dialog.Open(AllocateDialog)
		case key.Matches(msg, m.keys.Deallocate):
			return m, m.dialog.Open(DeallocateDialog)
		case key.Matches(msg, m.keys.Compact):
			m.run(func() error { return m.sess.Compact(m.ctx) })
			return m, nil
		case key.Matches(msg, m.keys.Merge):
			m.run(func() error { return m.sess.Merge(m.ctx) })
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			m.copyReport()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			m.help.ShowAll = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.report, cmd = m.report.Update(msg)
	return m, cmd
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Esc):
		m.dialog.Close()
		m.statusMessage = "Cancelled"
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m, m.dialog.NextField()
	case key.Matches(msg, m.keys.Enter):
		if !m.dialog.onLastField() {
			return m, m.dialog.NextField()
		}
		req, ok := m.dialog.Submit()
		if !ok {
			return m, nil
		}
		m.dialog.Close()
		m.apply(req)
		return m, nil
	}

	_, cmd := m.dialog.Update(msg)
	return m, cmd
}

func (m *Model) apply(r request) {
	switch r.kind {
	case AllocateDialog:
		m.run(func() error {
			_, err := m.sess.Allocate(m.ctx, r.name, r.size)
			return err
		})
	case DeallocateDialog:
		m.run(func() error { return m.sess.Deallocate(m.ctx, r.name) })
	}
}

// run performs one session operation and shows what it printed. Per-request
// failures only change the status line; anything else stops the model.
func (m *Model) run(op func() error) {
	m.out.Reset()
	err := op()
	text := m.out.String()

	m.report.SetContent(text)
	m.report.GotoTop()
	m.statusMessage = firstMessage(text)

	if err != nil && !session.Recoverable(err) {
		m.err = err
	}
}

func (m *Model) copyReport() {
	if err := m.copy(m.out.String()); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied report to clipboard"
}

// firstMessage returns the first line of text that is not part of a report.
func firstMessage(text string) string {
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		if strings.HasSuffix(line, ":") || strings.HasPrefix(line, "[") {
			return ""
		}
		return line
	}
	return ""
}
