// Package fader renders the crossfader position as a horizontal bar whose
// knob eases toward the latest value on a spring.
package fader

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/crossfader-relay/crossfader/internal/tui/theme"
)

const (
	fps       = 60
	frequency = 7.0
	damping   = 0.6
	// Below this distance and speed the knob snaps to the target and the
	// animation stops ticking.
	settleEpsilon = 0.05
)

// FrameMsg advances the spring by one frame.
type FrameMsg struct{}

// Model holds the bar's animation state.
type Model struct {
	Width int

	spring   harmonica.Spring
	target   float64
	pos      float64
	vel      float64
	value    int
	animated bool
}

// New creates a bar resting at zero.
func New() Model {
	return Model{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// Value is the latest value received.
func (m Model) Value() int { return m.value }

// Position is the knob's current animated position in [0,100].
func (m Model) Position() float64 { return m.pos }

// Settled reports whether the knob is at rest on the target.
func (m Model) Settled() bool { return !m.animated }

// SetValue retargets the spring. The returned command starts the frame
// ticker if the bar was at rest.
func (m *Model) SetValue(v int) tea.Cmd {
	m.value = v
	m.target = float64(v)
	if m.animated {
		return nil
	}
	m.animated = true
	return frame()
}

// Update handles animation frames.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(FrameMsg); !ok || !m.animated {
		return m, nil
	}

	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	if math.Abs(m.pos-m.target) < settleEpsilon && math.Abs(m.vel) < settleEpsilon {
		m.pos, m.vel = m.target, 0
		m.animated = false
		return m, nil
	}
	return m, frame()
}

// View renders the bar with the numeric value underneath.
func (m Model) View() string {
	width := m.Width - 4
	if width < 20 {
		width = 20
	}

	pos := min(max(m.pos, 0), 100)
	knob := int(math.Round(pos / 100 * float64(width-1)))

	left := lipgloss.NewStyle().Foreground(theme.ColorFaderLeft).
		Render(strings.Repeat("━", knob))
	mark := lipgloss.NewStyle().Foreground(theme.ColorFaderKnob).Bold(true).Render("█")
	right := lipgloss.NewStyle().Foreground(theme.ColorFaderRight).
		Render(strings.Repeat("━", width-1-knob))

	label := lipgloss.NewStyle().Foreground(theme.FaderColor(m.value)).Bold(true).
		Render(fmt.Sprintf("%3d%%", m.value))

	return theme.StyleBorder.Padding(0, 1).Render(left+mark+right) + "\n" +
		lipgloss.PlaceHorizontal(width+4, lipgloss.Center, label)
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}
