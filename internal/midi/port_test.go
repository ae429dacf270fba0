package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// stubIn stands in for a driver port; Drain and Close only need IsOpen
// and Close.
type stubIn struct {
	drivers.In
	closed bool
}

func (s *stubIn) IsOpen() bool { return !s.closed }

func (s *stubIn) Close() error {
	s.closed = true
	return nil
}

func values(events []Event) []int {
	out := make([]int, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Value)
	}
	return out
}

func TestPort_DrainInArrivalOrder(t *testing.T) {
	p := &Port{name: "test", in: &stubIn{}, limit: 16}
	p.receive(gomidi.ControlChange(0, 8, 10), 0)
	p.receive(gomidi.NoteOn(0, 60, 100), 0)
	p.receive(gomidi.ControlChange(2, 8, 20), 0)

	events, err := p.Drain()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, Event{Kind: ControlChange, Channel: 0, Control: 8, Value: 10}, events[0])
	assert.Equal(t, Other, events[1].Kind)
	assert.Equal(t, Event{Kind: ControlChange, Channel: 2, Control: 8, Value: 20}, events[2])

	events, err = p.Drain()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPort_OverflowKeepsNewest(t *testing.T) {
	p := &Port{name: "test", in: &stubIn{}, limit: 3}
	for v := uint8(0); v <= 10; v++ {
		p.receive(gomidi.ControlChange(0, 8, v), 0)
	}

	p.mu.Lock()
	dropped := p.dropped
	p.mu.Unlock()
	assert.Equal(t, 8, dropped)

	events, err := p.Drain()
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9, 10}, values(events))

	p.mu.Lock()
	assert.Zero(t, p.dropped, "drain resets the drop count")
	p.mu.Unlock()
}

func TestPort_DrainFailsWhenDisconnected(t *testing.T) {
	in := &stubIn{}
	p := &Port{name: "DJ Controller", in: in, limit: 3}
	in.closed = true

	_, err := p.Drain()
	assert.ErrorIs(t, err, ErrDevice)
	assert.Contains(t, err.Error(), "DJ Controller")
}

func TestPort_DrainAfterClose(t *testing.T) {
	p := &Port{name: "test", in: &stubIn{}, limit: 3}
	require.NoError(t, p.Close())

	_, err := p.Drain()
	assert.ErrorIs(t, err, ErrDevice)
}
