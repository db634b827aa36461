package setup

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/yolodolo42/ethwallet/internal/ui"
)

var (
	borderColor = lipgloss.Color("62") // Purple

	// BoxStyle frames the welcome and completion screens.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	// PhraseBoxStyle frames the recovery phrase so it stands out.
	PhraseBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ui.ColorWarning).
			Padding(1, 2)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorDim)

	DimStyle = lipgloss.NewStyle().
			Foreground(ui.ColorDim)

	WordIndexStyle = lipgloss.NewStyle().
			Foreground(ui.ColorDim).
			Width(4).
			Align(lipgloss.Right)

	WordStyle = lipgloss.NewStyle().
			Foreground(ui.ColorText).
			Bold(true).
			Width(12)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary)
)
