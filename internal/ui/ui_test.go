package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func items() []SelectorItem {
	return []SelectorItem{
		{ID: "create", Label: "Create"},
		{ID: "import", Label: "Import", Disabled: true},
		{ID: "key", Label: "Key"},
	}
}

func TestSelector_Navigation(t *testing.T) {
	t.Run("skips disabled items", func(t *testing.T) {
		s := NewSelector("pick", items())
		assert.Equal(t, 0, s.Cursor())

		s.Update(key("down"))
		assert.Equal(t, 2, s.Cursor())

		s.Update(key("down"))
		assert.Equal(t, 2, s.Cursor(), "stays on last enabled item")

		s.Update(key("up"))
		assert.Equal(t, 0, s.Cursor())
	})

	t.Run("cursor starts on first enabled", func(t *testing.T) {
		s := NewSelector("pick", []SelectorItem{{ID: "a", Disabled: true}, {ID: "b"}})
		assert.Equal(t, 1, s.Cursor())
	})

	t.Run("digit shortcut", func(t *testing.T) {
		s := NewSelector("pick", items())
		s.Update(key("3"))
		assert.Equal(t, 2, s.Cursor())

		s.Update(key("2"))
		assert.Equal(t, 2, s.Cursor(), "disabled item ignored")

		s.Update(key("9"))
		assert.Equal(t, 2, s.Cursor())
	})
}

func TestSelector_Choose(t *testing.T) {
	s := NewSelector("pick", items())
	assert.True(t, s.Active())
	assert.Empty(t, s.Selected())

	s.Update(key("j"))
	s.Update(key("enter"))
	assert.False(t, s.Active())
	assert.False(t, s.Cancelled())
	assert.Equal(t, "key", s.Selected())
	assert.Empty(t, s.View())

	// Inactive selectors ignore input.
	s.Update(key("up"))
	assert.Equal(t, "key", s.Selected())
}

func TestSelector_Cancel(t *testing.T) {
	s := NewSelector("pick", items())
	s.Update(key("esc"))
	assert.True(t, s.Cancelled())
	assert.Empty(t, s.Selected())
}

func TestSelector_View(t *testing.T) {
	s := NewSelector("Set up wallet", items())
	v := s.View()
	assert.Contains(t, v, "Set up wallet")
	assert.Contains(t, v, "1. Create")
	assert.Contains(t, v, "3. Key")
}

func TestInputs(t *testing.T) {
	in := NewInput("phrase", 512)
	assert.Empty(t, in.Prompt)
	assert.Equal(t, 512, in.CharLimit)
	assert.Equal(t, textinput.EchoNormal, in.EchoMode)

	secret := NewSecretInput("password", 100)
	assert.Equal(t, textinput.EchoPassword, secret.EchoMode)
}

func TestTable(t *testing.T) {
	out := Table([]string{"Name", "ID"}, [][]string{{"sepolia", "11155111"}, {"base", "8453"}})
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "sepolia")
	assert.Contains(t, out, "8453")
}

func TestLines(t *testing.T) {
	assert.Contains(t, Success("sent"), "sent")
	assert.Contains(t, Failure("nope"), SymbolCross)
	assert.Contains(t, Warning("careful"), "careful")
	assert.Contains(t, Field("Address", "0xabc"), "0xabc")
}
