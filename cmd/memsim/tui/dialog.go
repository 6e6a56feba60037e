package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DialogKind selects which request a dialog collects.
type DialogKind int

const (
	AllocateDialog DialogKind = iota
	DeallocateDialog
)

// request is a completed dialog.
type request struct {
	kind DialogKind
	name string
	size int
}

// DialogModel is the modal form for allocate and deallocate requests.
type DialogModel struct {
	kind    DialogKind
	inputs  []textinput.Model
	focus   int
	err     string
	visible bool
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 32
	in.Width = 20
	return in
}

// Open shows an empty dialog of the given kind with the first field focused.
func (m *DialogModel) Open(kind DialogKind) tea.Cmd {
	m.kind = kind
	m.inputs = []textinput.Model{newInput("process name")}
	if kind == AllocateDialog {
		m.inputs = append(m.inputs, newInput("size"))
	}
	m.focus = 0
	m.err = ""
	m.visible = true
	return tea.Batch(m.inputs[0].Focus(), textinput.Blink)
}

// Close hides the dialog.
func (m *DialogModel) Close() {
	m.visible = false
	m.inputs = nil
}

// IsVisible returns whether the dialog is shown
func (m *DialogModel) IsVisible() bool {
	return m.visible
}

// NextField moves focus to the following field, wrapping around.
func (m *DialogModel) NextField() tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

// onLastField reports whether enter should submit.
func (m *DialogModel) onLastField() bool {
	return m.focus == len(m.inputs)-1
}

// Submit validates the fields. On failure the dialog stays open with an
// error line.
func (m *DialogModel) Submit() (request, bool) {
	r := request{kind: m.kind, name: strings.TrimSpace(m.inputs[0].Value())}
	if r.name == "" {
		m.err = "process name is required"
		return request{}, false
	}
	if m.kind == AllocateDialog {
		size, err := strconv.Atoi(strings.TrimSpace(m.inputs[1].Value()))
		if err != nil {
			m.err = "size must be a number"
			return request{}, false
		}
		r.size = size
	}
	return r, true
}

// Init implements tea.Model
func (m DialogModel) Init() tea.Cmd {
	return nil
}

// Update passes input to the focused field.
func (m *DialogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m *DialogModel) View() string {
	if !m.visible {
		return ""
	}

	title := "Allocate process"
	labels := []string{"Name", "Size"}
	if m.kind == DeallocateDialog {
		title = "Deallocate process"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		fmt.Fprintf(&b, "%-5s %s\n", labels[i]+":", in.View())
	}
	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("enter: submit • tab: next field • esc: cancel"))

	return dialogStyle.Render(b.String())
}
