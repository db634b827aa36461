package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("205") // Pink/magenta
	ColorSuccess   = lipgloss.Color("35")  // Green
	ColorWarning   = lipgloss.Color("214") // Gold/yellow
	ColorError     = lipgloss.Color("196") // Red
	ColorDim       = lipgloss.Color("241") // Gray
	ColorAccent    = lipgloss.Color("39")  // Blue
	ColorHighlight = lipgloss.Color("212") // Light pink
	ColorText      = lipgloss.Color("252")
)

const (
	SymbolArrow = "▸"
	SymbolCheck = "✓"
	SymbolCross = "✗"
	SymbolWarn  = "!"
	SymbolIn    = "←"
	SymbolOut   = "→"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorDim).
			Width(10)

	AddressStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	AmountStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	SelectorCursor = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SelectorItemStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	SelectorDim = lipgloss.NewStyle().
			Foreground(ColorDim)

	SelectorActive = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)
)

// Field renders "label  value" with an aligned label column.
func Field(label, value string) string {
	return LabelStyle.Render(label) + " " + value
}

// Success renders a checkmarked line.
func Success(msg string) string {
	return SuccessStyle.Render(SymbolCheck + " " + msg)
}

// Warning renders a highlighted caution line.
func Warning(msg string) string {
	return WarningStyle.Render(SymbolWarn + " " + msg)
}

// Failure renders an error line.
func Failure(msg string) string {
	return ErrorStyle.Render(SymbolCross + " " + msg)
}
