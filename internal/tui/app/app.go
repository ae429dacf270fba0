// Package app is the watch client's root Bubble Tea model.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/crossfader-relay/crossfader/internal/tui/client"
	"github.com/crossfader-relay/crossfader/internal/tui/theme"
	"github.com/crossfader-relay/crossfader/internal/tui/views/fader"
	"github.com/crossfader-relay/crossfader/internal/tui/views/status"
)

// Conn is the part of client.WSClient the model drives.
type Conn interface {
	Listen(ctx context.Context) tea.Cmd
	ReadLoop(ctx context.Context) tea.Cmd
	Close()
}

// Model is the root Bubble Tea model.
type Model struct {
	ws     Conn
	ctx    context.Context
	cancel context.CancelFunc

	keys  KeyMap
	width int

	statusBar status.Model
	fader     fader.Model
}

// New creates the root model.
func New(ws Conn, url string) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		ws:        ws,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		statusBar: status.New(url),
		fader:     fader.New(),
	}
}

// Init starts the WebSocket connection.
func (m Model) Init() tea.Cmd {
	return m.ws.Listen(m.ctx)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.statusBar.Width = msg.Width
		m.fader.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.cancel()
			m.ws.Close()
			return m, tea.Quit
		}
		return m, nil

	case client.WSConnectedMsg:
		m.statusBar.Connected = true
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSDisconnectedMsg:
		m.statusBar.Connected = false
		return m, m.ws.Listen(m.ctx)

	case client.FaderMsg:
		m.statusBar.Updates++
		anim := m.fader.SetValue(msg.Value)
		return m, tea.Batch(anim, m.ws.ReadLoop(m.ctx))

	case fader.FrameMsg:
		var cmd tea.Cmd
		m.fader, cmd = m.fader.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the full screen.
func (m Model) View() string {
	title := theme.StyleTitle.Render("crossfader")
	help := theme.StyleDimmed.Render("q quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.fader.View(),
		m.statusBar.View(),
		help,
	)
}
