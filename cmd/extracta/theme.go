package main

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the CLI uses.
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

const (
	colorAccent  = colorPink
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
)

var (
	titleStyle       = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorSubtext0).Bold(true).Padding(0, 1)
	cellStyle        = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	borderStyle      = lipgloss.NewStyle().Foreground(colorSurface1)
	dimStyle         = lipgloss.NewStyle().Foreground(colorOverlay1)
	creditStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	debitStyle       = lipgloss.NewStyle().Foreground(colorError)
	warnStyle        = lipgloss.NewStyle().Foreground(colorWarning)
)
