package commands

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#00ff9f")
	dim    = lipgloss.Color("#6e7681")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle = lipgloss.NewStyle().Foreground(accent)
	hintStyle  = lipgloss.NewStyle().Foreground(dim)
)
