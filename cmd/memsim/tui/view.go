package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

// View renders the entire UI
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.report.View(),
		m.renderStatus(),
		m.help.View(m.keys),
	)

	// The dialog and help overlays are rebuilt on every render so they see
	// the latest model state.
	switch {
	case m.dialog.IsVisible():
		return overlay.New(&m.dialog, backdrop(main), overlay.Center, overlay.Center, 0, 0).View()
	case m.showHelp:
		return overlay.New(backdrop(dialogStyle.Render(m.help.View(m.keys))), backdrop(main),
			overlay.Center, overlay.Center, 0, 0).View()
	}
	return main
}

// renderHeader renders the title with the strategy and memory usage
func (m Model) renderHeader() string {
	e := m.sess.Engine()
	u := e.Usage()
	info := fmt.Sprintf("%s • %d/%d used • %d free block(s)",
		e.Strategy(), u.Used, u.Total, u.FreeBlocks)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("Memory Partition Simulator"),
		"  ",
		infoStyle.Render(info),
	)
}

// renderStatus renders the last operation's message
func (m Model) renderStatus() string {
	if m.statusMessage == "" {
		return mutedStyle.Render(" ")
	}
	return statusStyle.Render(m.statusMessage)
}

// backdrop is a static tea.Model used as an overlay layer.
type backdrop string

func (b backdrop) Init() tea.Cmd                       { return nil }
func (b backdrop) Update(tea.Msg) (tea.Model, tea.Cmd) { return b, nil }
func (b backdrop) View() string                        { return string(b) }
