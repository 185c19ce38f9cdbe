// Package tui renders a live view of a monitor run with Bubble Tea.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")
	cyanColor    = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(16)

	statusWaiting  = lipgloss.NewStyle().Foreground(warningColor)
	statusRunning  = lipgloss.NewStyle().Foreground(cyanColor)
	statusComplete = lipgloss.NewStyle().Foreground(successColor)
	statusFailed   = lipgloss.NewStyle().Foreground(errorColor)

	logStyle = lipgloss.NewStyle().Foreground(mutedColor)
)
