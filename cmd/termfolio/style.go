package main

import "github.com/charmbracelet/lipgloss"

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleEcho = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleOutput = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleAction = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)
