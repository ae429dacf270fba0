package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/crossfader-relay/crossfader/internal/tui/theme"
)

// Model is the footer showing link state, server URL and update count.
type Model struct {
	Connected bool
	URL       string
	Updates   int
	Width     int
}

// New creates a status bar for url.
func New(url string) Model {
	return Model{URL: url}
}

func (m Model) link() string {
	if m.Connected {
		return theme.StyleOK.Render("● Connected")
	}
	return theme.StyleError.Render("○ Connecting...")
}

// View renders the status bar.
func (m Model) View() string {
	sep := theme.StyleDimmed.Render(" · ")
	line := m.link() + sep + theme.StyleDimmed.Render(m.URL) + sep +
		fmt.Sprintf("%d updates", m.Updates)

	return lipgloss.NewStyle().
		Width(max(m.Width, 40)).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(theme.ColorBorder).
		Render(line)
}
