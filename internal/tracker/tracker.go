// Package tracker follows the learned control and publishes its value.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/crossfader-relay/crossfader/internal/fader"
	"github.com/crossfader-relay/crossfader/internal/midi"
	"github.com/jonboulle/clockwork"
)

// Broadcaster receives each distinct value.
type Broadcaster interface {
	Broadcast(value int)
}

// Tracker polls a source, filters to one control, and publishes the scaled
// value whenever it changes. It is the only writer of the shared Value.
type Tracker struct {
	source       midi.Source
	control      int
	value        *fader.Value
	broadcaster  Broadcaster
	clock        clockwork.Clock
	pollInterval time.Duration

	// OnChange, if set, runs after each broadcast.
	OnChange func(value int)
}

// New creates a tracker for control.
func New(source midi.Source, control int, value *fader.Value, b Broadcaster, clock clockwork.Clock, pollInterval time.Duration) *Tracker {
	return &Tracker{
		source:       source,
		control:      control,
		value:        value,
		broadcaster:  b,
		clock:        clock,
		pollInterval: pollInterval,
	}
}

// Control returns the tracked control id.
func (t *Tracker) Control() int { return t.control }

// Run polls until ctx is done or the source fails. A source failure is
// returned wrapped and is not retried.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := t.clock.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		events, err := t.source.Drain()
		if err != nil {
			return fmt.Errorf("tracking control %d: %w", t.control, err)
		}
		t.Process(events)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}

// Process applies one drained batch in arrival order.
func (t *Tracker) Process(events []midi.Event) {
	for _, ev := range events {
		if ev.Kind != midi.ControlChange || ev.Control != t.control {
			continue
		}
		scaled := fader.Percent(ev.Value)
		if scaled == t.value.Load() {
			continue
		}
		t.value.Store(scaled)
		t.broadcaster.Broadcast(scaled)
		if t.OnChange != nil {
			t.OnChange(scaled)
		}
	}
}
