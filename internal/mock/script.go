package mock

import (
	"sync"

	"github.com/crossfader-relay/crossfader/internal/midi"
)

// Script replays fixed batches, one per Drain call. Once the batches run out
// it returns Err (if set) or empty batches.
type Script struct {
	mu      sync.Mutex
	batches [][]midi.Event
	err     error
	drains  int
}

// NewScript creates a scripted source.
func NewScript(batches ...[]midi.Event) *Script {
	return &Script{batches: batches}
}

// FailWith makes the source return err after the scripted batches.
func (s *Script) FailWith(err error) *Script {
	s.err = err
	return s
}

// Drain implements midi.Source.
func (s *Script) Drain() ([]midi.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drains++
	if len(s.batches) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

// Drains reports how many times Drain was called.
func (s *Script) Drains() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drains
}

// Remaining reports how many scripted batches are left.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}
