// Package midi models raw controller input and adapts hardware MIDI ports to
// a non-blocking event source.
package midi

import (
	"errors"
	"fmt"
)

// ErrDevice marks a failure of the underlying input device. The tracker
// treats it as fatal for the session.
var ErrDevice = errors.New("midi device failure")

// Kind tags the variants of Event the rest of the program cares about.
type Kind int

const (
	Other Kind = iota
	ControlChange
)

func (k Kind) String() string {
	switch k {
	case ControlChange:
		return "control_change"
	default:
		return "other"
	}
}

// Event is one raw message from an input device. Control and Value are only
// meaningful for ControlChange; Value is in [0,127].
type Event struct {
	Kind    Kind
	Channel int
	Control int
	Value   int
}

// CC builds a control-change event on channel 0.
func CC(control, value int) Event {
	return Event{Kind: ControlChange, Control: control, Value: value}
}

func (e Event) String() string {
	if e.Kind != ControlChange {
		return e.Kind.String()
	}
	return fmt.Sprintf("cc ch=%d control=%d value=%d", e.Channel, e.Control, e.Value)
}

// Source is a non-blocking event source. Drain returns every event that
// arrived since the previous call, in arrival order, and must not wait for
// new ones. A non-nil error means the device is gone.
type Source interface {
	Drain() ([]Event, error)
}

// DeviceError wraps an error from a named device so callers can match it
// with errors.Is(err, ErrDevice).
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("midi device %q: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() []error {
	return []error{ErrDevice, e.Err}
}
