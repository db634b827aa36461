package ui

import "github.com/charmbracelet/bubbles/textinput"

// NewInput returns an unfocused single-line input without a prompt prefix.
func NewInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 60
	return in
}

// NewSecretInput is NewInput with masked echo, for passwords and keys.
func NewSecretInput(placeholder string, limit int) textinput.Model {
	in := NewInput(placeholder, limit)
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	return in
}
