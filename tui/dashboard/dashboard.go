// Package dashboard is an interactive terminal view of the local relation
// buckets. It renders the application view (leader only) and the unit view
// with Refresh and Quit buttons.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/copydata/charm"
	"github.com/artpar/copydata/tui/button"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Width(12)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(12)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)
)

// Button names.
const (
	Refresh = "refresh"
	Quit    = "quit"
)

// buttonRow is the screen row the buttons are drawn on, below the title.
const buttonRow = 1

// Loader reads the current views.
type Loader func(ctx context.Context) ([]charm.View, error)

type viewsMsg []charm.View

type errMsg struct{ err error }

// Model is the dashboard.
type Model struct {
	title   string
	load    Loader
	buttons []button.Model
	focus   int

	views     []charm.View
	err       error
	loading   bool
	lastFetch time.Time
	now       func() time.Time
}

// New creates a dashboard titled title that reads its content with load.
func New(title string, load Loader) Model {
	refresh := button.New("Refresh", Refresh).Focus()
	quit := button.New("Quit", Quit)

	refresh = refresh.SetOrigin(0, buttonRow)
	quit = quit.SetOrigin(lipgloss.Width(refresh.View())+1, buttonRow)

	return Model{
		title:   title,
		load:    load,
		buttons: []button.Model{refresh, quit},
		loading: true,
		now:     time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return fetch(m.load)
}

func fetch(load Loader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		views, err := load(ctx)
		if err != nil {
			return errMsg{err}
		}
		return viewsMsg(views)
	}
}

// Views returns the last loaded views.
func (m Model) Views() []charm.View { return m.views }

// Err returns the last load error.
func (m Model) Err() error { return m.err }

// Focused returns the name of the focused button.
func (m Model) Focused() string { return m.buttons[m.focus].Name }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m.refresh()
		case "tab", "right":
			return m.moveFocus(1), nil
		case "shift+tab", "left":
			return m.moveFocus(-1), nil
		}
		return m.forward(msg)

	case tea.MouseMsg:
		return m.forward(msg)

	case button.PressedMsg:
		switch msg.Name {
		case Refresh:
			return m.refresh()
		case Quit:
			return m, tea.Quit
		}
		return m, nil

	case viewsMsg:
		m.loading = false
		m.err = nil
		m.views = msg
		m.lastFetch = m.now()
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, fetch(m.load)
}

func (m Model) moveFocus(delta int) Model {
	buttons := make([]button.Model, len(m.buttons))
	copy(buttons, m.buttons)
	buttons[m.focus] = buttons[m.focus].Blur()
	m.focus = (m.focus + delta + len(buttons)) % len(buttons)
	buttons[m.focus] = buttons[m.focus].Focus()
	m.buttons = buttons
	return m
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	buttons := make([]button.Model, len(m.buttons))
	cmds := make([]tea.Cmd, 0, len(m.buttons))
	for i, b := range m.buttons {
		var cmd tea.Cmd
		buttons[i], cmd = b.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.buttons = buttons
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")

	parts := make([]string, 0, 2*len(m.buttons))
	for i, b := range m.buttons {
		if i > 0 {
			parts = append(parts, " ")
		}
		parts = append(parts, b.View())
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	sb.WriteString("\n\n")

	for _, v := range m.views {
		sb.WriteString(sectionStyle.Render(fmt.Sprintf("%s %s", v.Title, v.Entity.Name)))
		sb.WriteString("\n")
		for _, f := range v.Fields {
			sb.WriteString(nameStyle.Render(f.Name))
			sb.WriteString(tagStyle.Render(f.Tag))
			sb.WriteString(fmt.Sprintf("%v\n", f.Value))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.renderStatus())
	return sb.String()
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	parts := []string{}
	if !m.lastFetch.IsZero() {
		parts = append(parts, fmt.Sprintf("last refresh: %s", m.lastFetch.Format("15:04:05")))
	}
	if m.loading {
		parts = append(parts, "refreshing...")
	}
	parts = append(parts, "q: quit  tab: next button  r: refresh")
	return statusBarStyle.Render(strings.Join(parts, "  |  "))
}

// Run starts the dashboard on the terminal with mouse support.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
