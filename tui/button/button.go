// Package button is a clickable terminal button for bubbletea programs.
//
// A button tracks two flags: Focused, toggled by Focus and Blur, and
// Hovered, toggled as the mouse enters and leaves the region the button
// occupies on screen. A left click inside the region, or enter/space while
// focused, emits PressedMsg carrying the button name. The parent places the
// button with SetOrigin; the size of the region is the size of View.
package button

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PressedMsg is sent when a button is pressed.
type PressedMsg struct {
	Name string
}

// DefaultStyle renders white on navy blue.
var DefaultStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("15")).
	Background(lipgloss.Color("18")).
	Padding(0, 2)

// Model is a button.
type Model struct {
	Label string
	Name  string
	Style lipgloss.Style

	focused bool
	hovered bool
	x, y    int
}

// New creates a button. The name defaults to the label.
func New(label, name string) Model {
	if name == "" {
		name = label
	}
	return Model{Label: label, Name: name, Style: DefaultStyle}
}

// WithStyle returns a copy of m rendered with s.
func (m Model) WithStyle(s lipgloss.Style) Model {
	m.Style = s
	return m
}

func (m Model) Focused() bool { return m.focused }
func (m Model) Hovered() bool { return m.hovered }

func (m Model) Focus() Model {
	m.focused = true
	return m
}

func (m Model) Blur() Model {
	m.focused = false
	return m
}

// SetOrigin places the top-left corner of the button at column x, row y.
func (m Model) SetOrigin(x, y int) Model {
	m.x, m.y = x, y
	return m
}

// Contains reports whether the cell at column x, row y is inside the
// button.
func (m Model) Contains(x, y int) bool {
	view := m.View()
	w, h := lipgloss.Width(view), lipgloss.Height(view)
	return x >= m.x && x < m.x+w && y >= m.y && y < m.y+h
}

func (m Model) Init() tea.Cmd { return nil }

// Update handles mouse and key messages. Messages the button does not care
// about leave it unchanged.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		inside := m.Contains(msg.X, msg.Y)
		m.hovered = inside
		if inside && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m, m.press()
		}
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch msg.String() {
		case "enter", " ":
			return m, m.press()
		}
	}
	return m, nil
}

func (m Model) press() tea.Cmd {
	name := m.Name
	return func() tea.Msg { return PressedMsg{Name: name} }
}

// View renders the label. Focus underlines it and hover reverses the
// colours.
func (m Model) View() string {
	s := m.Style
	if m.focused {
		s = s.Bold(true).Underline(true)
	}
	if m.hovered {
		s = s.Reverse(true)
	}
	return s.Render(m.Label)
}
