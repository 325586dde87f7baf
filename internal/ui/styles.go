// Package ui renders dartcc's terminal output: styled step progress
// lines and the spinner shown while external tools run.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the CLI output.
type Styles struct {
	Accent  lipgloss.Style
	Primary lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style

	AccentColor lipgloss.Color
}

// DefaultStyles returns the default dark-terminal style set.
func DefaultStyles() *Styles {
	accent := lipgloss.Color("#f97316")
	return &Styles{
		Accent:      lipgloss.NewStyle().Foreground(accent),
		Primary:     lipgloss.NewStyle().Foreground(lipgloss.Color("#e0e0e8")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("#5a5a70")),
		AccentColor: accent,
	}
}
