package button

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func pressed(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		return ""
	}
	msg, ok := cmd().(PressedMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want PressedMsg", cmd())
	}
	return msg.Name
}

func TestNew_NameDefaultsToLabel(t *testing.T) {
	if b := New("Refresh", ""); b.Name != "Refresh" {
		t.Errorf("Name = %q", b.Name)
	}
	if b := New("Refresh", "refresh"); b.Name != "refresh" {
		t.Errorf("Name = %q", b.Name)
	}
}

func TestFocusBlur(t *testing.T) {
	b := New("OK", "ok")
	if b.Focused() {
		t.Fatal("new button is focused")
	}
	b = b.Focus()
	if !b.Focused() {
		t.Error("Focus() did not focus")
	}
	if b = b.Blur(); b.Focused() {
		t.Error("Blur() did not blur")
	}
}

func TestMouse_EnterLeaveClick(t *testing.T) {
	b := New("OK", "ok").WithStyle(lipgloss.NewStyle()).SetOrigin(10, 2)

	// "OK" occupies columns 10 and 11 of row 2.
	b, cmd := b.Update(tea.MouseMsg{X: 11, Y: 2, Action: tea.MouseActionMotion})
	if !b.Hovered() || cmd != nil {
		t.Errorf("enter: hovered %v, cmd %v", b.Hovered(), cmd != nil)
	}

	b, cmd = b.Update(tea.MouseMsg{X: 10, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := pressed(t, cmd); got != "ok" {
		t.Errorf("click pressed %q, want ok", got)
	}

	b, _ = b.Update(tea.MouseMsg{X: 12, Y: 2, Action: tea.MouseActionMotion})
	if b.Hovered() {
		t.Error("leave: still hovered")
	}

	_, cmd = b.Update(tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if cmd != nil {
		t.Error("click outside the region pressed the button")
	}
}

func TestMouse_RightClickIgnored(t *testing.T) {
	b := New("OK", "ok").WithStyle(lipgloss.NewStyle())
	_, cmd := b.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	if cmd != nil {
		t.Error("right click pressed the button")
	}
}

func TestKeys_OnlyWhenFocused(t *testing.T) {
	b := New("OK", "ok")

	if _, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter pressed an unfocused button")
	}

	b = b.Focus()
	if _, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEnter}); pressed(t, cmd) != "ok" {
		t.Error("enter did not press the focused button")
	}
	if _, cmd := b.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}); pressed(t, cmd) != "ok" {
		t.Error("space did not press the focused button")
	}
	if _, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}); cmd != nil {
		t.Error("x pressed the button")
	}
}

func TestView_ContainsLabel(t *testing.T) {
	b := New("Quit", "quit").WithStyle(lipgloss.NewStyle())
	if got := b.View(); got != "Quit" {
		t.Errorf("View() = %q", got)
	}
}
