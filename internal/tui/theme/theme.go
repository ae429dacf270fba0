// Package theme provides the Lip Gloss color palette and reusable styles
// shared by the operator console and the watch client. It is a leaf package
// with no internal imports to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Fader bar colors.
var (
	ColorFaderLeft  = lipgloss.Color("#3b82f6")
	ColorFaderRight = lipgloss.Color("#a855f7")
	ColorFaderKnob  = lipgloss.Color("#f9fafb")
	ColorTrack      = lipgloss.Color("#374151")
)

// Learn table colors.
var (
	ColorControl = lipgloss.Color("#06b6d4")
	ColorRange   = lipgloss.Color("#22c55e")
	ColorChanges = lipgloss.Color("#f59e0b")
	ColorHeading = lipgloss.Color("#d946ef")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorAccent  = lipgloss.Color("#3b82f6")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorControl)

	StyleOK = lipgloss.NewStyle().
		Foreground(ColorHealthy)

	StyleWarn = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)

// FaderColor blends from the left deck color to the right deck color.
func FaderColor(pct int) lipgloss.Color {
	if pct < 50 {
		return ColorFaderLeft
	}
	return ColorFaderRight
}
