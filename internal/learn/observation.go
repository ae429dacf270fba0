package learn

import (
	"fmt"
	"sort"

	"github.com/crossfader-relay/crossfader/internal/midi"
)

// Observation aggregates what was seen on one control during a learn window.
type Observation struct {
	Control int
	Min     int
	Max     int
	Changes int
}

// Span is Max - Min.
func (o Observation) Span() int { return o.Max - o.Min }

func (o Observation) String() string {
	return fmt.Sprintf("control %d: %d-%d (%d changes)", o.Control, o.Min, o.Max, o.Changes)
}

// Thresholds decide which observations count as deliberate movement. Both
// comparisons are strict.
type Thresholds struct {
	MinSpan    int
	MinChanges int
}

// DefaultThresholds separate a full-range sweep from idle noise and taps.
var DefaultThresholds = Thresholds{MinSpan: 20, MinChanges: 5}

// Significant reports whether o passes t.
func (t Thresholds) Significant(o Observation) bool {
	return o.Span() > t.MinSpan && o.Changes > t.MinChanges
}

// Session folds control-change events into per-control observations. The
// result only depends on the multiset of events seen.
type Session struct {
	obs map[int]*Observation
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{obs: make(map[int]*Observation)}
}

// Observe folds ev into the session. Non control-change events are ignored.
func (s *Session) Observe(ev midi.Event) {
	if ev.Kind != midi.ControlChange {
		return
	}
	o, ok := s.obs[ev.Control]
	if !ok {
		s.obs[ev.Control] = &Observation{Control: ev.Control, Min: ev.Value, Max: ev.Value, Changes: 1}
		return
	}
	o.Min = min(o.Min, ev.Value)
	o.Max = max(o.Max, ev.Value)
	o.Changes++
}

// Len is the number of distinct controls seen.
func (s *Session) Len() int { return len(s.obs) }

// Observations returns a copy of every observation, ordered by control id.
func (s *Session) Observations() []Observation {
	out := make([]Observation, 0, len(s.obs))
	for _, o := range s.obs {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Control < out[j].Control })
	return out
}

// Classify returns the significant observations, ordered by control id.
func (s *Session) Classify(t Thresholds) []Observation {
	var out []Observation
	for _, o := range s.Observations() {
		if t.Significant(o) {
			out = append(out, o)
		}
	}
	return out
}
