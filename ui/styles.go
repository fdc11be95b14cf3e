package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	highlightColor = lipgloss.Color("13")

	// Input prompt
	PromptStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)
	// NO .Background() = transparent!

	// Assistant answer style
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Tool call notices
	ToolStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// Status lines and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)
)
