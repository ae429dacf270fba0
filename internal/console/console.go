// Package console is the operator-facing side of crossfader: the header,
// device and control prompts, learn-mode instructions and the live status
// line. Prompts are small Bubble Tea programs run to completion one at a
// time.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/crossfader-relay/crossfader/internal/learn"
	"github.com/crossfader-relay/crossfader/internal/tui/theme"
)

// ErrAborted is returned when the operator cancels a prompt.
var ErrAborted = errors.New("cancelled by operator")

var _ learn.Operator = (*Console)(nil)

// ErrNoDevices is returned when there is nothing to choose from.
var ErrNoDevices = errors.New("no MIDI input devices found")

const learnInstructions = `## MIDI Control Learn Mode

1. Move **only** the crossfader fully left to right, a few times.
2. When the window closes, the detected controls are listed.
3. Press *Ctrl+C* to finish early once you are done moving it.
`

// Console implements learn.Operator on a terminal.
type Console struct {
	in  io.Reader
	out io.Writer

	mu         sync.Mutex
	statusLive bool
}

// New creates a console on stdin/stdout.
func New() *Console {
	return &Console{in: os.Stdin, out: os.Stdout}
}

// NewWithIO creates a console on the given streams.
func NewWithIO(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

func (c *Console) run(m tea.Model) (tea.Model, error) {
	c.endStatus()
	p := tea.NewProgram(m, tea.WithInput(c.in), tea.WithOutput(c.out))
	return p.Run()
}

// Header prints the application banner.
func (c *Console) Header(version string) {
	fmt.Fprintln(c.out, theme.StyleTitle.Render("MIDI Controller Monitor v"+version))
}

// Info prints a plain informational line.
func (c *Console) Info(format string, args ...any) {
	c.endStatus()
	fmt.Fprintln(c.out, theme.StyleOK.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a recoverable problem.
func (c *Console) Warn(format string, args ...any) {
	c.endStatus()
	fmt.Fprintln(c.out, theme.StyleWarn.Render(fmt.Sprintf(format, args...)))
}

// Error prints a failure.
func (c *Console) Error(format string, args ...any) {
	c.endStatus()
	fmt.Fprintln(c.out, theme.StyleError.Render(fmt.Sprintf(format, args...)))
}

// Confirm implements learn.Operator.
func (c *Console) Confirm(prompt string, defaultYes bool) (bool, error) {
	final, err := c.run(newConfirmModel(prompt, defaultYes))
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.aborted {
		return false, ErrAborted
	}
	return m.answer, nil
}

// SelectDevice offers the saved device for reuse when it is still
// attached, and otherwise lets the operator pick from names.
func (c *Console) SelectDevice(names []string, saved string) (string, error) {
	if len(names) == 0 {
		return "", ErrNoDevices
	}
	if saved != "" {
		for _, n := range names {
			if n != saved {
				continue
			}
			reuse, err := c.Confirm(fmt.Sprintf("Found previously saved device: %s. Use this device?", saved), true)
			if err != nil {
				return "", err
			}
			if reuse {
				return saved, nil
			}
			break
		}
	}

	final, err := c.run(newDeviceModel(names))
	if err != nil {
		return "", err
	}
	m := final.(deviceModel)
	if m.aborted || !m.done {
		return "", ErrAborted
	}
	return names[m.chosen], nil
}

// SelectControl implements learn.Operator.
func (c *Console) SelectControl(candidates []learn.Observation) (int, error) {
	final, err := c.run(newControlModel(candidates))
	if err != nil {
		return 0, err
	}
	m := final.(controlModel)
	if m.aborted || !m.done {
		return 0, ErrAborted
	}
	return m.chosen, nil
}

// Instructions prints the learn-mode walkthrough.
func (c *Console) Instructions() {
	fmt.Fprint(c.out, RenderMarkdown(learnInstructions))
}

// LearnProgress is a learn.Learner progress hook.
func (c *Console) LearnProgress(phase learn.Phase, controls int) {
	switch phase {
	case learn.Observing:
		c.status(theme.StyleWarn.Render(fmt.Sprintf("Monitoring crossfader movement... found %d controls", controls)))
	case learn.Classifying:
		c.endStatus()
	}
}

// FaderStatus is a tracker change hook.
func (c *Console) FaderStatus(value int) {
	c.status("Crossfader: " + theme.StyleValue.Render(strconv.Itoa(value)+"%"))
}

// status rewrites the current terminal line.
func (c *Console) status(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusLive = true
	fmt.Fprint(c.out, "\r\033[K"+line)
}

func (c *Console) endStatus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.statusLive {
		fmt.Fprintln(c.out)
		c.statusLive = false
	}
}

// CandidateTable renders learn candidates as a table.
func CandidateTable(candidates []learn.Observation) string {
	rows := make([][]string, 0, len(candidates))
	for _, o := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(o.Control),
			fmt.Sprintf("%d - %d", o.Min, o.Max),
			strconv.Itoa(o.Changes),
		})
	}

	colors := []lipgloss.Color{theme.ColorControl, theme.ColorRange, theme.ColorChanges}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("Control #", "Range", "# Changes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(theme.ColorHeading)
			}
			return s.Foreground(colors[col%len(colors)])
		})
	return t.String()
}

// RenderMarkdown renders md for the terminal, falling back to the raw text
// if the renderer cannot be built.
func RenderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
