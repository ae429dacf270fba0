package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/crossfader-relay/crossfader/internal/learn"
	"github.com/crossfader-relay/crossfader/internal/tui/theme"
)

// confirmModel asks a yes/no question. Enter picks the default.
type confirmModel struct {
	keys       KeyMap
	prompt     string
	defaultYes bool

	answer  bool
	done    bool
	aborted bool
}

func newConfirmModel(prompt string, defaultYes bool) confirmModel {
	return confirmModel{keys: DefaultKeyMap(), prompt: prompt, defaultYes: defaultYes}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Cancel):
		m.aborted = true
	case key.Matches(km, m.keys.Yes):
		m.answer, m.done = true, true
	case key.Matches(km, m.keys.No):
		m.answer, m.done = false, true
	case key.Matches(km, m.keys.Enter):
		m.answer, m.done = m.defaultYes, true
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m confirmModel) View() string {
	hint := "[y/N]"
	if m.defaultYes {
		hint = "[Y/n]"
	}
	if m.done {
		answer := "no"
		if m.answer {
			answer = "yes"
		}
		return m.prompt + " " + theme.StyleDimmed.Render(answer) + "\n"
	}
	if m.aborted {
		return m.prompt + " " + theme.StyleError.Render("cancelled") + "\n"
	}
	return m.prompt + " " + theme.StyleDimmed.Render(hint) + " "
}

// deviceModel picks one device from a numbered list.
type deviceModel struct {
	keys   KeyMap
	names  []string
	cursor int

	chosen  int
	done    bool
	aborted bool
}

func newDeviceModel(names []string) deviceModel {
	return deviceModel{keys: DefaultKeyMap(), names: names, chosen: -1}
}

func (m deviceModel) Init() tea.Cmd { return nil }

func (m deviceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Cancel), key.Matches(km, m.keys.Quit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(km, m.keys.Up):
		m.cursor = (m.cursor - 1 + len(m.names)) % len(m.names)
	case key.Matches(km, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.names)
	case key.Matches(km, m.keys.Enter):
		m.chosen, m.done = m.cursor, true
		return m, tea.Quit
	default:
		// Digits jump straight to a numbered row.
		if n, err := strconv.Atoi(km.String()); err == nil && n >= 1 && n <= len(m.names) {
			m.chosen, m.done = n-1, true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m deviceModel) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Available MIDI Input Devices:") + "\n")
	for i, name := range m.names {
		prefix := "  "
		line := fmt.Sprintf("%d  %s", i+1, name)
		if i == m.cursor && !m.done {
			prefix = "> "
			line = theme.StyleSelected.Render(line)
		}
		b.WriteString(prefix + line + "\n")
	}
	if m.done {
		b.WriteString(theme.StyleOK.Render("Selected: "+m.names[m.chosen]) + "\n")
	} else if !m.aborted {
		b.WriteString(theme.StyleDimmed.Render("  j/k:move  enter/1-9:select  q:quit") + "\n")
	}
	return b.String()
}

// controlModel shows the learn candidates and reads a control number.
type controlModel struct {
	keys       KeyMap
	candidates []learn.Observation
	input      textinput.Model

	chosen  int
	errMsg  string
	done    bool
	aborted bool
}

func newControlModel(candidates []learn.Observation) controlModel {
	ti := textinput.New()
	ti.Placeholder = "control number"
	ti.CharLimit = 3
	ti.Prompt = "Enter the control number for your crossfader: "
	ti.Focus()
	return controlModel{keys: DefaultKeyMap(), candidates: candidates, input: ti}
}

func (m controlModel) Init() tea.Cmd { return textinput.Blink }

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Cancel):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(km, m.keys.Enter):
			control, err := m.parse(m.input.Value())
			if err != nil {
				m.errMsg = err.Error()
				m.input.SetValue("")
				return m, nil
			}
			m.chosen, m.done = control, true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m controlModel) parse(s string) (int, error) {
	control, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("please enter a valid control number")
	}
	for _, c := range m.candidates {
		if c.Control == control {
			return control, nil
		}
	}
	return 0, fmt.Errorf("control %d is not one of the detected controls", control)
}

func (m controlModel) View() string {
	sections := []string{
		theme.StyleHeader.Render("Detected Controls with Significant Movement:"),
		CandidateTable(m.candidates),
	}
	if m.done {
		sections = append(sections, theme.StyleOK.Render(fmt.Sprintf("Watching control number: %d", m.chosen)))
	} else if !m.aborted {
		sections = append(sections, m.input.View())
		if m.errMsg != "" {
			sections = append(sections, theme.StyleError.Render(m.errMsg))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}
