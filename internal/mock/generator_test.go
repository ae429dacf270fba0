package mock

import (
	"errors"
	"testing"
	"time"

	"github.com/crossfader-relay/crossfader/internal/midi"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_SweepsFullRange(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := NewGenerator(clock, 8, time.Second)

	clock.Advance(time.Second)
	events, err := g.Drain()
	require.NoError(t, err)

	lo, hi := 127, 0
	for _, ev := range events {
		if ev.Control != 8 {
			continue
		}
		lo = min(lo, ev.Value)
		hi = max(hi, ev.Value)
	}
	assert.LessOrEqual(t, lo, 5)
	assert.GreaterOrEqual(t, hi, 120)
}

func TestGenerator_NoEventsWithoutTime(t *testing.T) {
	g := NewGenerator(clockwork.NewFakeClock(), 8, time.Second)
	events, err := g.Drain()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGenerator_NoiseStaysNarrow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := NewGenerator(clock, 8, time.Second)
	clock.Advance(10 * time.Second)

	events, err := g.Drain()
	require.NoError(t, err)
	for _, ev := range events {
		if ev.Control == 8 {
			continue
		}
		assert.Equal(t, midi.ControlChange, ev.Kind)
		assert.Contains(t, []int{1, 14, 21}, ev.Control)
	}
}

func TestScript(t *testing.T) {
	boom := errors.New("boom")
	s := NewScript([]midi.Event{midi.CC(1, 2)}).FailWith(boom)

	events, err := s.Drain()
	require.NoError(t, err)
	assert.Equal(t, []midi.Event{midi.CC(1, 2)}, events)

	_, err = s.Drain()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, s.Drains())
}
