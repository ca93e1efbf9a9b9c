package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/crafted-tech/selfinstall/installer"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))

	statusStyles = map[installer.Status]lipgloss.Style{
		installer.StatusSucceeded:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		installer.StatusFailed:         lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		installer.StatusCanceledByUser: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
)

// StatusStyle returns the style used to print a final status.
func StatusStyle(s installer.Status) lipgloss.Style {
	if style, ok := statusStyles[s]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
