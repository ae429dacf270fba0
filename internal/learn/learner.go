// Package learn discovers which controller channel the operator is moving.
//
// A learn run watches the raw event stream for a bounded window, folds the
// events into per-control observations, keeps the controls that moved over a
// wide span many times, and asks the operator to confirm one of them.
package learn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crossfader-relay/crossfader/internal/midi"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrNoSignificantMovement means no control passed the thresholds. The
	// caller may retry.
	ErrNoSignificantMovement = errors.New("no significant movement detected")
	// ErrAborted means the operator declined to pick a control.
	ErrAborted = errors.New("learn aborted by operator")
)

// Phase is the learner's position in its state machine.
type Phase int

const (
	Idle Phase = iota
	Observing
	Classifying
	AwaitingSelection
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Observing:
		return "observing"
	case Classifying:
		return "classifying"
	case AwaitingSelection:
		return "awaiting selection"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Operator answers the learner's questions. Implementations may block on
// user input.
type Operator interface {
	// Confirm asks a yes/no question.
	Confirm(prompt string, defaultYes bool) (bool, error)
	// SelectControl asks for one control id from candidates. Returning an
	// id outside the set makes the learner ask again.
	SelectControl(candidates []Observation) (int, error)
}

// Options tune a learn run.
type Options struct {
	Window       time.Duration
	PollInterval time.Duration
	Thresholds   Thresholds
}

// DefaultOptions watch for five seconds, polling every 10ms.
var DefaultOptions = Options{
	Window:       5 * time.Second,
	PollInterval: 10 * time.Millisecond,
	Thresholds:   DefaultThresholds,
}

// Learner runs learn sessions against a source.
type Learner struct {
	source   midi.Source
	operator Operator
	clock    clockwork.Clock
	opts     Options

	// OnProgress, if set, is called on every phase change and, while
	// observing, whenever a control is seen for the first time.
	OnProgress func(phase Phase, controls int)
}

// New creates a Learner.
func New(source midi.Source, operator Operator, clock clockwork.Clock, opts Options) *Learner {
	return &Learner{source: source, operator: operator, clock: clock, opts: opts}
}

// Learn returns the control id to track. If saved is non-nil the operator
// is first offered to reuse it, skipping observation entirely.
//
// Cancelling ctx while observing ends the window early; whatever was
// collected is still classified.
func (l *Learner) Learn(ctx context.Context, saved *int) (int, error) {
	l.progress(Idle, 0)
	if saved != nil {
		reuse, err := l.operator.Confirm(fmt.Sprintf("Found previously saved control number: %d. Use this control?", *saved), true)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrAborted, err)
		}
		if reuse {
			l.progress(Done, 0)
			return *saved, nil
		}
	}

	sess, err := l.Observe(ctx)
	if err != nil {
		return 0, err
	}

	l.progress(Classifying, sess.Len())
	candidates := sess.Classify(l.opts.Thresholds)
	if len(candidates) == 0 {
		return 0, ErrNoSignificantMovement
	}

	l.progress(AwaitingSelection, sess.Len())
	control, err := l.selectControl(candidates)
	if err != nil {
		return 0, err
	}
	l.progress(Done, sess.Len())
	return control, nil
}

// Observe runs the observation window and returns the folded session.
func (l *Learner) Observe(ctx context.Context) (*Session, error) {
	l.progress(Observing, 0)
	sess := NewSession()

	deadline := l.clock.After(l.opts.Window)
	ticker := l.clock.NewTicker(l.opts.PollInterval)
	defer ticker.Stop()

	for {
		events, err := l.source.Drain()
		if err != nil {
			return nil, fmt.Errorf("learn: %w", err)
		}
		seen := sess.Len()
		for _, ev := range events {
			sess.Observe(ev)
		}
		if sess.Len() != seen {
			l.progress(Observing, sess.Len())
		}

		select {
		case <-ctx.Done():
			return sess, nil
		case <-deadline:
			return sess, nil
		case <-ticker.Chan():
		}
	}
}

func (l *Learner) selectControl(candidates []Observation) (int, error) {
	valid := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		valid[c.Control] = true
	}
	for {
		control, err := l.operator.SelectControl(candidates)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrAborted, err)
		}
		if valid[control] {
			return control, nil
		}
	}
}

func (l *Learner) progress(p Phase, controls int) {
	if l.OnProgress != nil {
		l.OnProgress(p, controls)
	}
}
