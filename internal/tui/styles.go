package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	helpStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	overlayBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)

	statusSavedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	statusPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)
