package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the refresh TUI
type Styles struct {
	Title lipgloss.Style
	Badge lipgloss.Style
	Timer lipgloss.Style

	// Target list
	Cursor      lipgloss.Style
	Selected    lipgloss.Style
	Unselected  lipgloss.Style
	Unavailable lipgloss.Style
	Suggested   lipgloss.Style
	Description lipgloss.Style

	// Estimate and validation
	Estimate lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style

	// Run progress
	StatusComplete lipgloss.Style
	StatusFailed   lipgloss.Style
	StatusActive   lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Badge: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1),
		Timer: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Unselected:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Unavailable: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
		Suggested:   lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Italic(true),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Estimate: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		StatusComplete: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		StatusActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Icons used in the TUI
const (
	IconActive    = "●"
	IconComplete  = "✓"
	IconFailed    = "✗"
	IconPending   = "○"
	IconCancelled = "⊘"
	IconChecked   = "[x]"
	IconUnchecked = "[ ]"
)
