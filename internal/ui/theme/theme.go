// Package theme holds the terminal styles used by the qbank CLI.
package theme

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/bank"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Rule = lipgloss.NewStyle().
		Foreground(Border)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent)
)

var tierStyles = map[bank.Difficulty]lipgloss.Style{
	bank.Easy:   lipgloss.NewStyle().Foreground(Success),
	bank.Medium: lipgloss.NewStyle().Foreground(Accent),
	bank.Hard:   lipgloss.NewStyle().Foreground(Error),
}

// Tier renders a difficulty label in its tier color.
func Tier(d bank.Difficulty) string {
	if st, ok := tierStyles[d]; ok {
		return st.Render(string(d))
	}
	return string(d)
}

// Header renders a section title over a rule of width columns.
func Header(title string, width int) string {
	return Title.Render(title) + "\n" + Divider(width)
}

// Divider renders a horizontal rule.
func Divider(width int) string {
	return Rule.Render(strings.Repeat("─", width))
}
