package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/unoduel/internal/deck"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// Card colors
var (
	RedCardStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	GreenCardStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	BlueCardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4EA8DE")).Bold(true)
	YellowCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	WildCardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#3C3C3C")).Bold(true)
)

func cardStyle(c deck.Color) lipgloss.Style {
	switch c {
	case deck.Red:
		return RedCardStyle
	case deck.Green:
		return GreenCardStyle
	case deck.Blue:
		return BlueCardStyle
	case deck.Yellow:
		return YellowCardStyle
	default:
		return WildCardStyle
	}
}

func renderCard(c deck.Card) string {
	return cardStyle(c.Color).Render(c.String())
}
