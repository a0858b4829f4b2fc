// Package tui provides Bubble Tea TUI components for the vifei CLI.
//
// TUI rules:
//   - TUI output is presentation only; it renders the same ViewModel the
//     JSON and human-text paths render, never TUI-exclusive data.
//   - The --profile flag (standard/showcase) only picks a style set; it
//     never changes what is rendered.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	highlightColor = lipgloss.Color("#3B82F6") // Blue
)

// Styles for TUI components.
var (
	// TitleStyle for headers and titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(22)

	// ValueStyle for field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// SuccessStyle for clean/nominal states.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// WarningStyle for degraded-but-exporting states.
	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// ErrorStyle for refused/fatal states.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// BoxStyle for bordered containers.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	// MeterFillStyle and MeterEmptyStyle render the queue-pressure gauge.
	MeterFillStyle = lipgloss.NewStyle().
			Foreground(highlightColor)
	MeterEmptyStyle = lipgloss.NewStyle().
				Foreground(mutedColor)
)

// ladderStyle returns the style for a degradation ladder level: nominal
// (L0) is success, intermediate levels are warning, the terminal L5 is
// error.
func ladderStyle(level string) lipgloss.Style {
	switch level {
	case "L0":
		return SuccessStyle
	case "L5":
		return ErrorStyle
	default:
		return WarningStyle
	}
}

// exportSafetyStyle colors the export-safety state machine's current
// value.
func exportSafetyStyle(state string) lipgloss.Style {
	switch state {
	case "clean":
		return SuccessStyle
	case "dirty":
		return WarningStyle
	case "refused":
		return ErrorStyle
	default:
		return ValueStyle
	}
}

// showcaseTitle renders a title, adding a decorative rule in showcase
// profile. Never changes the underlying content, only its framing.
func showcaseTitle(title, profile string) string {
	if profile == "showcase" {
		return TitleStyle.Render("◆ " + title + " ◆")
	}
	return TitleStyle.Render(title)
}
