package midi

import (
	"errors"
	"fmt"
	"log"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var errPortClosed = errors.New("port closed")

// InputNames lists the input ports of the registered driver. A driver must
// be linked in by the main package (e.g. rtmididrv).
func InputNames() []string {
	ins := gomidi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// Port buffers messages delivered by the driver's callback so they can be
// drained from a poll loop. When the buffer is full the oldest message is
// dropped and counted.
type Port struct {
	name  string
	in    drivers.In
	stop  func()
	limit int

	mu      sync.Mutex
	pending []Event
	dropped int
	closed  bool
}

// Open starts listening on the named input port.
func Open(name string, limit int) (*Port, error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, &DeviceError{Device: name, Err: err}
	}

	p := &Port{name: name, in: in, limit: limit}
	stop, err := gomidi.ListenTo(in, p.receive)
	if err != nil {
		return nil, &DeviceError{Device: name, Err: fmt.Errorf("listen: %w", err)}
	}
	p.stop = stop
	return p, nil
}

func (p *Port) receive(msg gomidi.Message, _ int32) {
	var ev Event
	var ch, cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) {
		ev = Event{Kind: ControlChange, Channel: int(ch), Control: int(cc), Value: int(val)}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.limit > 0 && len(p.pending) >= p.limit {
		// Full: evict the oldest so the latest position survives.
		n := copy(p.pending, p.pending[1:])
		p.pending = p.pending[:n]
		p.dropped++
	}
	p.pending = append(p.pending, ev)
}

// Name returns the port name the caller asked for.
func (p *Port) Name() string { return p.name }

// Drain implements Source.
func (p *Port) Drain() ([]Event, error) {
	p.mu.Lock()
	events := p.pending
	dropped := p.dropped
	closed := p.closed
	p.pending = nil
	p.dropped = 0
	p.mu.Unlock()

	if closed {
		return nil, &DeviceError{Device: p.name, Err: errPortClosed}
	}
	if !p.in.IsOpen() {
		return nil, &DeviceError{Device: p.name, Err: errors.New("device disconnected")}
	}
	if dropped > 0 {
		log.Printf("midi %s: dropped %d events (buffer full)", p.name, dropped)
	}
	return events, nil
}

// Close stops listening and closes the port.
func (p *Port) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if p.stop != nil {
		p.stop()
	}
	return p.in.Close()
}
