// Package mock provides synthetic MIDI sources: a generator that imitates a
// controller with one crossfader being swept and a few idle, jittering knobs,
// and a scripted source for tests.
package mock

import (
	"math/rand"
	"sync"
	"time"

	"github.com/crossfader-relay/crossfader/internal/midi"
	"github.com/jonboulle/clockwork"
)

type noisyControl struct {
	control int
	center  int
	spread  int
}

// Generator is a midi.Source whose crossfader control sweeps back and forth
// across the full range while the other controls jitter around a rest value.
type Generator struct {
	clock  clockwork.Clock
	fader  int
	period time.Duration
	step   time.Duration
	noise  []noisyControl

	mu   sync.Mutex
	rng  *rand.Rand
	last time.Time
	t    time.Duration
}

// NewGenerator creates a generator that sweeps the given control once every
// period, emitting one message per step.
func NewGenerator(clock clockwork.Clock, faderControl int, period time.Duration) *Generator {
	return &Generator{
		clock:  clock,
		fader:  faderControl,
		period: period,
		step:   20 * time.Millisecond,
		noise: []noisyControl{
			{control: 1, center: 64, spread: 2},
			{control: 14, center: 10, spread: 1},
			{control: 21, center: 100, spread: 3},
		},
		rng:  rand.New(rand.NewSource(1)),
		last: clock.Now(),
	}
}

// Control returns the control id the generator sweeps.
func (g *Generator) Control() int { return g.fader }

// Drain implements midi.Source.
func (g *Generator) Drain() ([]midi.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	var events []midi.Event
	for now.Sub(g.last) >= g.step {
		g.last = g.last.Add(g.step)
		g.t += g.step
		events = append(events, midi.CC(g.fader, triangle(g.t, g.period)))

		// Idle knobs wobble roughly once every ten steps.
		if g.rng.Intn(10) == 0 {
			n := g.noise[g.rng.Intn(len(g.noise))]
			v := n.center + g.rng.Intn(2*n.spread+1) - n.spread
			events = append(events, midi.CC(n.control, clamp(v)))
		}
	}
	return events, nil
}

// triangle maps t onto 0..127..0 over one period.
func triangle(t, period time.Duration) int {
	if period <= 0 {
		return 0
	}
	phase := float64(t%period) / float64(period)
	if phase < 0.5 {
		return int(phase * 2 * 127)
	}
	return int((1 - phase) * 2 * 127)
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 127:
		return 127
	default:
		return v
	}
}
